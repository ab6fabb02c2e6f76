// Command e2egen generates GitHub Actions workflows for e2e tests.
package main

import "e2egen/internal/cli"

func main() {
	cli.Execute()
}
