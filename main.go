package main

import "github.com/ValentinKolb/qtrie/cmd"

func main() {
	cmd.Execute()
}
