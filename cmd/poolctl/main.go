// poolctl runs operator commands against the pool registry: provisioning a
// new pool and suspending swapping or providing on an existing one.
//
//	poolctl -cmd newpool -a BTC -b IRT -rank 1
//	poolctl -cmd suspendswap -pool 3
//	poolctl -cmd suspendproviding -pool 3
package main

import (
	"flag"
	"fmt"
	"os"

	"swapcontrol/internal/services"
	"swapcontrol/pkg/config"
)

func main() {
	cmd := flag.String("cmd", "", "newpool | suspendswap | suspendproviding")
	currencyA := flag.String("a", "", "currency A symbol (newpool)")
	currencyB := flag.String("b", "", "currency B symbol (newpool)")
	rank := flag.Int("rank", 1, "display rank (newpool)")
	poolID := flag.Uint("pool", 0, "pool id (suspend commands)")
	flag.Parse()

	config.InitDB()
	registry := services.NewRegistry(config.DB)

	switch *cmd {
	case "newpool":
		if *currencyA == "" || *currencyB == "" {
			fail("newpool requires -a and -b")
		}
		pool, err := registry.Create(*currencyA, *currencyB, *rank)
		if err != nil {
			fail("create pool: %v", err)
		}
		fmt.Printf("pool %d created for %s-%s\n", pool.ID, pool.CurrencyA, pool.CurrencyB)
	case "suspendswap":
		if err := registry.Suspend(*poolID, services.SuspendScopeSwap); err != nil {
			fail("suspend swap: %v", err)
		}
		fmt.Printf("swapping suspended on pool %d\n", *poolID)
	case "suspendproviding":
		if err := registry.Suspend(*poolID, services.SuspendScopeProviding); err != nil {
			fail("suspend providing: %v", err)
		}
		fmt.Printf("providing suspended on pool %d\n", *poolID)
	default:
		fail("unknown -cmd %q", *cmd)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
