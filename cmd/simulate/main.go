package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"highcard-server/internal/rng"
	"highcard-server/pkg/highcard"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/sirupsen/logrus"
)

// CLI holds the simulation flags
type CLI struct {
	Games        int   `default:"10000" help:"Number of games to simulate"`
	DeckSize     int   `default:"40" help:"Cards in the deck"`
	NumPlayers   int   `default:"4" help:"Seats at the table"`
	MaxCardValue int   `default:"12" help:"Highest card value a draw can produce"`
	Seed         int64 `default:"0" help:"Master RNG seed (0 picks one from the clock)"`
	Verbose      bool  `short:"v" help:"Verbose logging"`
}

// gameResult is what a single simulated game contributes to the statistics
type gameResult struct {
	winnerSeats  []int
	winningScore int
	margin       int
	tieRounds    int
	rounds       int
}

// statistics aggregates results across every simulated game
type statistics struct {
	games          int
	seatWins       []int
	sharedTitles   int
	outrightTitles int
	tieRounds      int
	totalRounds    int
	sumScore       float64
	sumScore2      float64
	sumMargin      float64
	minScore       int
	maxScore       int
}

func newStatistics(numPlayers int) *statistics {
	return &statistics{
		seatWins: make([]int, numPlayers),
		minScore: math.MaxInt,
	}
}

func (s *statistics) add(result gameResult) {
	s.games++
	s.tieRounds += result.tieRounds
	s.totalRounds += result.rounds

	score := float64(result.winningScore)
	s.sumScore += score
	s.sumScore2 += score * score
	s.sumMargin += float64(result.margin)

	if result.winningScore < s.minScore {
		s.minScore = result.winningScore
	}

	if result.winningScore > s.maxScore {
		s.maxScore = result.winningScore
	}

	if len(result.winnerSeats) > 1 {
		s.sharedTitles++
	} else {
		s.outrightTitles++
	}

	for _, seat := range result.winnerSeats {
		s.seatWins[seat]++
	}
}

func (s *statistics) meanWinningScore() float64 {
	if s.games == 0 {
		return 0
	}

	return s.sumScore / float64(s.games)
}

func (s *statistics) stdDevWinningScore() float64 {
	if s.games < 2 {
		return 0
	}

	mean := s.meanWinningScore()
	variance := (s.sumScore2 - float64(s.games)*mean*mean) / float64(s.games-1)
	return math.Sqrt(variance)
}

func (s *statistics) confidenceInterval95() (float64, float64) {
	mean := s.meanWinningScore()
	margin := 1.96 * s.stdDevWinningScore() / math.Sqrt(float64(s.games))
	return mean - margin, mean + margin
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	if cli.Seed == 0 {
		cli.Seed = time.Now().UnixNano()
	}

	level := log.WarnLevel
	if cli.Verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	engineLog := logrus.New()
	engineLog.SetOutput(os.Stderr)
	engineLog.SetLevel(logrus.WarnLevel)
	if cli.Verbose {
		engineLog.SetLevel(logrus.DebugLevel)
	}

	opts := highcard.Options{
		DeckSize:       cli.DeckSize,
		NumPlayers:     cli.NumPlayers,
		MaxCardValue:   cli.MaxCardValue,
		PointsPerScore: 1,
	}

	logger.Info("starting simulation", "games", cli.Games, "seed", cli.Seed)

	// the master RNG hands every game its own seed so any single game can
	// be replayed in isolation
	masterRng := rand.New(rand.NewSource(cli.Seed)) // nolint:gosec

	stats := newStatistics(opts.NumPlayers)
	start := time.Now()

	for i := 0; i < cli.Games; i++ {
		gameSeed := masterRng.Int63()

		result, err := playGame(engineLog, opts, gameSeed)
		if err != nil {
			logger.Fatal("could not simulate game", "err", err, "seed", gameSeed)
		}

		stats.add(result)

		if (i+1)%10000 == 0 {
			logger.Info("progress",
				"games", i+1,
				"meanWinningScore", fmt.Sprintf("%.3f", stats.meanWinningScore()))
		}
	}

	printReport(stats, opts, time.Since(start))
	ctx.Exit(0)
}

// playGame runs one full game and reports who took it and how
func playGame(logger logrus.FieldLogger, opts highcard.Options, seed int64) (gameResult, error) {
	game, err := highcard.New(logger, opts, rng.NewSeeded(seed))
	if err != nil {
		return gameResult{}, err
	}

	var result gameResult

	// play round by round so scoring ties are visible
	before := make([]int, opts.NumPlayers)
	for game.PlayRound() {
		result.rounds++

		scorers := 0
		for i, p := range game.Players() {
			if p.Score > before[i] {
				scorers++
			}

			before[i] = p.Score
		}

		if scorers > 1 {
			result.tieRounds++
		}
	}

	standings := game.Scoreboard()
	result.winningScore = standings[0].Score
	for _, standing := range standings {
		if standing.Place != 1 {
			result.margin = result.winningScore - standing.Score
			break
		}

		result.winnerSeats = append(result.winnerSeats, standing.Seat)
	}

	return result, nil
}

func printReport(stats *statistics, opts highcard.Options, elapsed time.Duration) {
	gamesPerSec := float64(stats.games) / elapsed.Seconds()
	low, high := stats.confidenceInterval95()

	fmt.Printf("simulated %d games in %s (%.0f games/sec)\n",
		stats.games, elapsed.Round(time.Millisecond), gamesPerSec)
	fmt.Printf("table: %d seats, deck of %d, cards 1-%d, %d rounds per game\n",
		opts.NumPlayers, opts.DeckSize, opts.MaxCardValue, opts.TotalRounds())

	fmt.Printf("\nwinning score: mean %.3f (95%% CI %.3f-%.3f), stddev %.3f, min %d, max %d\n",
		stats.meanWinningScore(), low, high, stats.stdDevWinningScore(), stats.minScore, stats.maxScore)
	fmt.Printf("margin of victory: mean %.3f\n", stats.sumMargin/float64(stats.games))

	sharedPct := float64(stats.sharedTitles) / float64(stats.games) * 100
	fmt.Printf("titles: %d outright, %d shared (%.1f%%)\n",
		stats.outrightTitles, stats.sharedTitles, sharedPct)

	tiePct := float64(stats.tieRounds) / float64(stats.totalRounds) * 100
	fmt.Printf("split rounds: %d of %d (%.1f%%)\n", stats.tieRounds, stats.totalRounds, tiePct)

	// every seat draws from the same distribution, so win shares should
	// come out even
	fmt.Printf("\nwins by seat (shared titles count for every winner):\n")
	for seat, wins := range stats.seatWins {
		fmt.Printf("  seat %d: %6d (%.2f%%)\n", seat+1, wins, float64(wins)/float64(stats.games)*100)
	}
}
