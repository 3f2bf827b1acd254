package main

import "scanoutliers/internal/cli"

func main() {
	cli.Execute()
}
