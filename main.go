package main

import "github.com/internity/ms-go-reservations/cmd"

func main() {
	cmd.Execute()
}
