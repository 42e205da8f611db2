/*
Copyright © 2026 3 Leaps <info@3leaps.com>
*/
package main

import "github.com/fulmenhq/manifold/cmd"

func main() {
	cmd.Execute()
}
