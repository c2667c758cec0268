package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root, teardown := newRootCommand(os.Stdout)
	err := root.ExecuteContext(context.Background())
	if closeErr := teardown(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "climate-sim: %v\n", err)
		os.Exit(1)
	}
}
