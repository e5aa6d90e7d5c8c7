package cmd

import (
	"fmt"

	"github.com/rustyeddy/quantsim/broker"
	"github.com/rustyeddy/quantsim/broker/live"
	"github.com/rustyeddy/quantsim/broker/sim"
	"github.com/rustyeddy/quantsim/config"
	"github.com/rustyeddy/quantsim/engine"
	"github.com/rustyeddy/quantsim/feed"
	"github.com/rustyeddy/quantsim/journal"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/portfolio"
	"github.com/rustyeddy/quantsim/strategy"
	"github.com/rustyeddy/quantsim/wire"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a strategy over historical bars",
	Long: `Run loads a config file, builds the feed, broker and strategy, and
replays the configured date range. Bar data comes from one CSV file per
symbol in the data directory (<SYMBOL>.csv with open/high/low/close/volume
columns).

Example:
  quantsim run -c run.yaml -d ./data -s sma-cross --fast 10 --slow 30`,
	RunE: runRun,
}

var (
	runConfigPath string
	runDataDir    string
	runStrategy   string
	runFast       int
	runSlow       int
	runQty        float64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to run config (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runDataDir, "data", "d", "./data", "directory with <SYMBOL>.csv bar files")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "sma-cross", "strategy name (sma-cross, ema-cross, pair-spread)")
	runCmd.Flags().IntVar(&runFast, "fast", 10, "fast moving-average period")
	runCmd.Flags().IntVar(&runSlow, "slow", 30, "slow moving-average period")
	runCmd.Flags().Float64VarP(&runQty, "quantity", "q", 100, "order quantity per signal")

	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}
	start, end, err := cfg.StartEnd()
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	instruments := make([]market.Instrument, 0, len(cfg.Run.Symbols))
	for _, sym := range cfg.Run.Symbols {
		instruments = append(instruments, market.NewEquity(sym, ""))
	}

	brk, err := buildBroker(cfg, instruments, log)
	if err != nil {
		return err
	}

	jrnl, err := buildJournal(cfg)
	if err != nil {
		return err
	}
	defer jrnl.Close()

	pf := portfolio.New(cfg.Account.InitialCash)
	strat, err := buildStrategy(cfg, brk, pf, log)
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Config{
		Feed:           &feed.DirFeed{Dir: runDataDir},
		Strategy:       strat,
		Broker:         brk,
		Portfolio:      pf,
		Instruments:    instruments,
		Start:          start,
		End:            end,
		PeriodsPerYear: cfg.Run.PeriodsPerYear,
		Journal:        jrnl,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	final, err := eng.Run()
	if err != nil {
		return err
	}

	s := eng.Performance().Summarize()
	fmt.Printf("Final equity:   %.2f\n", final.TotalEquity())
	fmt.Printf("Total return:   %.2f%%\n", s.TotalReturn*100)
	fmt.Printf("Max drawdown:   %.2f%%\n", s.MaxDrawdown*100)
	fmt.Printf("Sharpe ratio:   %.3f\n", s.SharpeRatio)
	fmt.Printf("Sortino ratio:  %.3f\n", s.SortinoRatio)
	fmt.Printf("Win rate:       %.2f%%\n", s.WinRate*100)
	fmt.Printf("Commission:     %.2f\n", final.TotalCommission)
	fmt.Printf("Bars processed: %d\n", s.NumPoints)
	return nil
}

func buildBroker(cfg *config.Config, instruments []market.Instrument, log *zap.Logger) (broker.Broker, error) {
	switch cfg.Broker.Mode {
	case "live":
		identity := cfg.Broker.Identity
		if identity == "" {
			identity = cfg.Account.ID
		}
		client, err := wire.Dial(cfg.Broker.Address, identity, "tradecore", log)
		if err != nil {
			return nil, err
		}
		return live.New(client, instruments, log), nil
	default:
		return sim.New(cfg.Broker.CommissionRate, cfg.Broker.SlippageBps), nil
	}
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.FillsFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func buildStrategy(cfg *config.Config, brk broker.Broker, pf *portfolio.Portfolio, log *zap.Logger) (strategy.Strategy, error) {
	switch runStrategy {
	case "sma-cross":
		s := strategy.NewSMACross(brk, pf, runFast, runSlow, runQty)
		s.Log = log
		return s, nil
	case "ema-cross":
		s := strategy.NewEMACross(brk, pf, runFast, runSlow, runQty)
		s.Log = log
		return s, nil
	case "pair-spread":
		if len(cfg.Run.Symbols) != 2 {
			return nil, fmt.Errorf("pair-spread needs exactly two symbols, got %d", len(cfg.Run.Symbols))
		}
		s := strategy.NewPairSpread(brk, pf, cfg.Run.Symbols[0], cfg.Run.Symbols[1])
		s.Quantity = runQty
		s.Log = log
		return s, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", runStrategy)
	}
}
