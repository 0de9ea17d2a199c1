package main

import "github.com/OpenTraceLab/OpenTraceLogic/cmd/otl/cmd"

func main() {
	cmd.Execute()
}
