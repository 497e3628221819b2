package main

import "github.com/frahmantamala/payment-management/cmd"

func main() {
	cmd.Execute()
}
