// cmd/seeder/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := newApp(os.Stdin, os.Stdout)
	err := a.rootCmd().ExecuteContext(ctx)
	stop()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}
