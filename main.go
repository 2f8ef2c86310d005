package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/cloudx/cmd"
	"github.com/oakwood-commons/cloudx/pkg/logger"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}

	logger.Sync()
	if code := cmd.ExitCode(err); code != 0 {
		os.Exit(code)
	}
}
