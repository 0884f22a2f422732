package main

import (
	"errors"
	"os"

	"github.com/site-bender/sitebender-sub007/cmd/adaptive/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, cmd.ErrEvaluationFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
