/*
This is an example of application that will use the
topology package to test things out
*/
package main

import (
	"os"

	"github.com/spaghettifunk/hedra/testbed"
)

const defaultConfigPath = "testbed/demo.toml"

func main() {
	path := defaultConfigPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := testbed.LoadConfig(path)
	if err != nil {
		panic(err)
	}

	demo := testbed.NewDemo(cfg)
	if err := demo.Run(); err != nil {
		panic(err)
	}
}
