package main

import "github.com/lehigh-university-libraries/legacyjats/cmd"

func main() {
	cmd.Execute()
}
