package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/spf13/cobra"

	stm "github.com/rochester-stm/orec"
)

func newRunCommand() *cobra.Command {
	var (
		accounts  int
		transfers int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a bank-transfer workload and report timing and balance conservation",
		RunE: func(cmd *cobra.Command, args []string) error {
			runWorkload(accounts, transfers)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&accounts, "accounts", 8, "number of accounts to spread transfers across")
	flags.IntVar(&transfers, "transfers", 10000, "number of concurrent transfer transactions to run")

	return cmd
}

// runWorkload is the same workload example_bank_test.go exercises,
// scaled up and timed. Every transfer runs through stm.Atomically, which
// retries internally until it commits, with no attempt-level visibility
// for a caller to hook into or cap, so this command reports aggregate
// timing and the conservation invariant rather than a per-transfer retry
// count.
func runWorkload(numAccounts, numTransfers int) {
	const startingBalance = 1000
	accounts := make([]*stm.Var, numAccounts)
	for i := range accounts {
		accounts[i] = stm.NewVar(startingBalance)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < numTransfers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			from := rand.Intn(numAccounts)
			to := rand.Intn(numAccounts)
			if from == to {
				return
			}
			stm.Atomically(func(tx *stm.Tx) {
				bal := tx.Get(accounts[from]).(int)
				if bal < 10 {
					return
				}
				tx.Set(accounts[from], bal-10)
				tx.Set(accounts[to], tx.Get(accounts[to]).(int)+10)
			})
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	total := 0
	for _, a := range accounts {
		total += stm.AtomicGet(a).(int)
	}

	fmt.Printf("transfers=%d accounts=%d elapsed=%s balance_conserved=%v\n",
		numTransfers, numAccounts, elapsed, total == numAccounts*startingBalance)
}
