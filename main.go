package main

import "github.com/killallgit/cortex-chat/cmd"

func main() {
	cmd.Execute()
}
