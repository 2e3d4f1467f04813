// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/vcsmigrate/cmd/vcsmigrate/cmd"
)

func main() {
	cmd.Execute()
}
