// Copyright © 2024 The ELPS authors

package main

import "github.com/emmanuelbernard/ceylon-spec/cmd"

func main() {
	cmd.Execute()
}
