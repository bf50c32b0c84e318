// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/mwkit/bsa/internal/cmd"
)

func main() {
	if err := fang.Execute(context.Background(), cmd.NewRootCmd()); err != nil {
		os.Exit(1)
	}
}
