package main

import "github.com/OpenRecords/foi-request-services/cmd"

func main() {
	cmd.Execute()
}
