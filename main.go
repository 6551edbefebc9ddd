package main

import "sfneuman.com/gorollout/examples"

func main() {
	examples.ChainRollout()
}
