package rating

import "math"

const (
	// Beta is the per-player performance standard deviation added to each
	// member's belief when forming a team performance distribution.
	Beta = DefaultSigma / 2.0

	// DrawProbability sets the width of the draw margin.
	DrawProbability = 0.10

	sigmaFloor = 1e-4
)

// Team is one side of a match, in roster order.
type Team []PlayerRating

// RoundResult is the observed outcome of a single round.
type RoundResult int

const (
	Team1Wins RoundResult = iota
	Team2Wins
	RoundDrawn
)

// ResultFromScores classifies a scoreline.
func ResultFromScores(team1Score, team2Score float64) RoundResult {
	switch {
	case team1Score > team2Score:
		return Team1Wins
	case team2Score > team1Score:
		return Team2Wins
	default:
		return RoundDrawn
	}
}

// UpdateRound performs one Bayesian update of both rosters from a single
// round outcome and returns the posterior teams. Inputs are not mutated.
// Feeding the posteriors back in as the next round's priors compounds
// rounds sequentially.
func UpdateRound(team1, team2 Team, result RoundResult) (Team, Team) {
	if len(team1) == 0 || len(team2) == 0 {
		return cloneTeam(team1), cloneTeam(team2)
	}

	totalPlayers := float64(len(team1) + len(team2))
	c := math.Sqrt(sumSigmaSquared(team1) + sumSigmaSquared(team2) + totalPlayers*Beta*Beta)
	epsilon := drawMargin(totalPlayers)

	var winner, loser Team
	switch result {
	case Team1Wins:
		winner, loser = team1, team2
	case Team2Wins:
		winner, loser = team2, team1
	default:
		t := (sumMu(team1) - sumMu(team2)) / c
		v := vDraw(t, epsilon/c)
		w := wDraw(t, epsilon/c)
		post1 := applyCorrection(team1, c, v, w)
		post2 := applyCorrection(team2, c, -v, w)
		return post1, post2
	}

	t := (sumMu(winner) - sumMu(loser)) / c
	v := vWin(t, epsilon/c)
	w := wWin(t, epsilon/c)

	postWinner := applyCorrection(winner, c, v, w)
	postLoser := applyCorrection(loser, c, -v, w)

	if result == Team2Wins {
		return postLoser, postWinner
	}
	return postWinner, postLoser
}

func applyCorrection(team Team, c, v, w float64) Team {
	posterior := make(Team, len(team))
	for i, member := range team {
		sigmaSq := member.Sigma * member.Sigma

		member.Mu += (sigmaSq / c) * v
		newSigmaSq := sigmaSq * (1.0 - (sigmaSq/(c*c))*clamp01(w))
		member.Sigma = math.Max(math.Sqrt(newSigmaSq), sigmaFloor)

		posterior[i] = member
	}
	return posterior
}

func cloneTeam(team Team) Team {
	out := make(Team, len(team))
	copy(out, team)
	return out
}

func sumMu(team Team) float64 {
	var total float64
	for _, member := range team {
		total += member.Mu
	}
	return total
}

func sumSigmaSquared(team Team) float64 {
	var total float64
	for _, member := range team {
		total += member.Sigma * member.Sigma
	}
	return total
}

func drawMargin(totalPlayers float64) float64 {
	return normInvCDF((DrawProbability+1.0)/2.0) * math.Sqrt(totalPlayers) * Beta
}

// vWin and wWin are the truncated-Gaussian corrections for a decisive
// outcome, evaluated at the scaled performance difference t.
func vWin(t, epsilon float64) float64 {
	denom := normCDF(t - epsilon)
	if denom < 1e-12 {
		return -(t - epsilon)
	}
	return normPDF(t-epsilon) / denom
}

func wWin(t, epsilon float64) float64 {
	v := vWin(t, epsilon)
	return v * (v + t - epsilon)
}

func vDraw(t, epsilon float64) float64 {
	denom := normCDF(epsilon-t) - normCDF(-epsilon-t)
	if denom < 1e-12 {
		if t < 0 {
			return -t - epsilon
		}
		return -t + epsilon
	}
	return (normPDF(-epsilon-t) - normPDF(epsilon-t)) / denom
}

func wDraw(t, epsilon float64) float64 {
	denom := normCDF(epsilon-t) - normCDF(-epsilon-t)
	if denom < 1e-12 {
		return 1.0
	}
	v := vDraw(t, epsilon)
	return v*v + ((epsilon-t)*normPDF(epsilon-t)+(epsilon+t)*normPDF(-epsilon-t))/denom
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// normInvCDF is Acklam's rational approximation to the standard normal
// quantile function, accurate to about 1.15e-9 over (0, 1).
func normInvCDF(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}

	a := [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02,
		-2.759285104469687e+02, 1.383577518672690e+02,
		-3.066479806614716e+01, 2.506628277459239e+00,
	}
	b := [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02,
		-1.556989798598866e+02, 6.680131188771972e+01,
		-1.328068155288572e+01,
	}
	cc := [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01,
		-2.400758277161838e+00, -2.549732539343734e+00,
		4.374664141464968e+00, 2.938163982698783e+00,
	}
	d := [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01,
		2.445134137142996e+00, 3.754408661907416e+00,
	}

	const pLow = 0.02425
	const pHigh = 1 - pLow

	switch {
	case p < pLow:
		q := math.Sqrt(-2.0 * math.Log(p))
		return (((((cc[0]*q+cc[1])*q+cc[2])*q+cc[3])*q+cc[4])*q + cc[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1.0)
	case p <= pHigh:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1.0)
	default:
		q := math.Sqrt(-2.0 * math.Log(1.0-p))
		return -(((((cc[0]*q+cc[1])*q+cc[2])*q+cc[3])*q+cc[4])*q + cc[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1.0)
	}
}
