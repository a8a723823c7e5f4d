package main

import "github.com/fairflowapp/fairflow/cmd"

func main() {
	cmd.Execute()
}
