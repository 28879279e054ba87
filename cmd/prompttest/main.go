// Command prompttest prints the prompt that would be sent for an
// operation, for eyeballing template changes without a model call.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/settham78ths/V2/internal/entitlement"
	"github.com/settham78ths/V2/internal/prompt"
	"github.com/settham78ths/V2/internal/registry"
)

func main() {
	op := flag.String("op", "optimize", "operation to build the prompt for")
	lang := flag.String("lang", "pl", "target language")
	tierName := flag.String("tier", "free", "tier: free, one_time_paid, premium, override")
	job := flag.String("job", "", "target job posting text")
	flag.Parse()

	cvText, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
		os.Exit(1)
	}

	tier := entitlement.TierFree
	switch *tierName {
	case "one_time_paid":
		tier = entitlement.TierOneTimePaid
	case "premium":
		tier = entitlement.TierPremium
	case "override":
		tier = entitlement.TierOverride
	}

	built, err := prompt.Build(registry.Operation(*op), *lang, tier, prompt.Inputs{
		CVText:  string(cvText),
		JobText: *job,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "build prompt: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("--- system ---")
	fmt.Println(built.System)
	fmt.Println("--- user ---")
	fmt.Println(built.User)
}
