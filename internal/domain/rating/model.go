package rating

import "time"

const (
	// DefaultMu and DefaultSigma seed a player who has never been rated.
	DefaultMu    = 25.0
	DefaultSigma = 25.0 / 3.0

	// OrdinalConservativeness is the k in ordinal = mu - k*sigma.
	OrdinalConservativeness = 3.0
)

// PlayerRating is a Gaussian belief N(Mu, Sigma²) over one player's latent
// skill. Sigma stays strictly positive and never grows from an observation.
type PlayerRating struct {
	PlayerID      string
	Mu            float64
	Sigma         float64
	GamesRecorded int
	UpdatedAt     time.Time
}

// New returns the default belief for a player with no recorded games.
func New(playerID string) PlayerRating {
	return PlayerRating{
		PlayerID: playerID,
		Mu:       DefaultMu,
		Sigma:    DefaultSigma,
	}
}

// Ordinal is the conservative scalar used for ranking. It plays no role in
// the update math.
func (r PlayerRating) Ordinal() float64 {
	return r.Mu - OrdinalConservativeness*r.Sigma
}
