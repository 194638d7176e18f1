package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

func main() {
	rootCmd := newRootCmd(viper.GetViper())
	if err := execute(rootCmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
