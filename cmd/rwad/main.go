package main

import "github.com/LeJamon/goRWAd/internal/cli"

func main() {
	cli.Execute()
}
