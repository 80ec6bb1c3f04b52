package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aman-zulfiqar/anyswap-engine/internal/pool"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// parseLegs parses "index:amount" pairs separated by commas. For outputs
// the amount may be omitted on the last leg, which marks it solved.
func parseLegs(s string, amountOptional bool) ([]pool.AssetOut, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []pool.AssetOut
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idxStr, amtStr, hasAmt := strings.Cut(part, ":")
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, fmt.Errorf("bad asset index %q", idxStr)
		}
		var amt uint64
		if hasAmt {
			amt, err = strconv.ParseUint(amtStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad amount %q", amtStr)
			}
		} else if !amountOptional {
			return nil, fmt.Errorf("missing amount in %q", part)
		}
		out = append(out, pool.AssetOut{Index: idx, Amount: amt})
	}
	return out, nil
}

func parseAmounts(s string) ([]uint64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint64, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad amount %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func readPool(path string) (*pool.Pool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p pool.Pool
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse pool file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func writePool(path string, p *pool.Pool) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func main() {
	loadEnv()

	mode := flag.String("mode", "quote", "quote | swap | add | remove")
	poolPath := flag.String("pool", "pool.json", "path to the pool state file")
	in := flag.String("in", "", "swap inputs as index:amount pairs (e.g. 1:10000,2:500)")
	out := flag.String("out", "", "swap outputs; last leg without an amount is solved (e.g. 3:120,4)")
	amounts := flag.String("amounts", "", "deposit amounts per asset for -mode add (e.g. 100,200,300)")
	burn := flag.Uint64("burn", 0, "LP units to burn for -mode remove")
	slippageBps := flag.Int("slippage-bps", 100, "slippage in bps (e.g. 100 = 1%)")
	write := flag.Bool("write", false, "write the post-state back to the pool file")
	flag.Parse()

	p, err := readPool(*poolPath)
	if err != nil {
		fmt.Println("failed to load pool:", err)
		os.Exit(1)
	}

	switch *mode {
	case "quote", "swap":
		inLegs, err := parseLegs(*in, false)
		if err != nil {
			fmt.Println("bad -in:", err)
			os.Exit(2)
		}
		outLegs, err := parseLegs(*out, true)
		if err != nil {
			fmt.Println("bad -out:", err)
			os.Exit(2)
		}
		if len(inLegs) == 0 || len(outLegs) == 0 {
			fmt.Println("missing -in or -out")
			os.Exit(2)
		}
		req := pool.SwapRequest{Outputs: outLegs}
		for _, leg := range inLegs {
			req.Inputs = append(req.Inputs, pool.AssetIn{Index: leg.Index, Amount: leg.Amount})
		}

		if *mode == "quote" {
			q, err := p.QuoteSwap(req, uint16(*slippageBps))
			if err != nil {
				fmt.Println("quote failed:", err)
				os.Exit(1)
			}
			fmt.Printf("pool=%s solved_out=%d min_out=%d fee_total=%d\n",
				q.PoolID, q.SolvedAmountOut, q.MinAmountOut, sum(q.Fees))
			return
		}

		res, err := p.ComputeSwap(req)
		if err != nil {
			fmt.Println("swap failed:", err)
			os.Exit(1)
		}
		next := p.ApplySwap(res)
		fmt.Printf("amounts_out=%v fee_total=%d\n", res.AmountsOut, res.FeeTotal())
		if *write {
			if err := writePool(*poolPath, next); err != nil {
				fmt.Println("failed to write pool:", err)
				os.Exit(1)
			}
		}

	case "add":
		amts, err := parseAmounts(*amounts)
		if err != nil {
			fmt.Println("bad -amounts:", err)
			os.Exit(2)
		}
		res, err := p.ComputeAddLiquidity(amts)
		if err != nil {
			fmt.Println("add failed:", err)
			os.Exit(1)
		}
		if len(res.RatioWarnings) > 0 {
			fmt.Printf("warning: assets %v deviate from the pool ratio\n", res.RatioWarnings)
		}
		next := p.ApplyAddLiquidity(res)
		fmt.Printf("lp_minted=%d lp_supply=%d fee_total=%d\n", res.LPMinted, res.NewLPSupply, sum(res.Fees))
		if *write {
			if err := writePool(*poolPath, next); err != nil {
				fmt.Println("failed to write pool:", err)
				os.Exit(1)
			}
		}

	case "remove":
		if *burn == 0 {
			fmt.Println("missing -burn (must be > 0)")
			os.Exit(2)
		}
		res, err := p.ComputeRemoveLiquidity(*burn)
		if err != nil {
			fmt.Println("remove failed:", err)
			os.Exit(1)
		}
		next := p.ApplyRemoveLiquidity(res)
		fmt.Printf("amounts_out=%v lp_supply=%d fee_total=%d\n", res.AmountsOut, res.NewLPSupply, sum(res.Fees))
		if *write {
			if err := writePool(*poolPath, next); err != nil {
				fmt.Println("failed to write pool:", err)
				os.Exit(1)
			}
		}

	default:
		fmt.Println("invalid -mode (use quote|swap|add|remove)")
		os.Exit(2)
	}
}

func sum(xs []uint64) uint64 {
	var total uint64
	for _, x := range xs {
		total += x
	}
	return total
}
