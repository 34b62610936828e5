// Command asset-bundler plans asset bundles for a content project.
//
// Usage:
//
//	asset-bundler declare Assets/UI --group-by directory
//	asset-bundler declare Assets/Scenes/Title.unity
//	asset-bundler analyze --report --diff
//	asset-bundler bundles
//
// See asset-bundler help for the full command list.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"asset-bundler/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "asset-bundler:", err)
		os.Exit(1)
	}
}
