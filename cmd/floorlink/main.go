// Command floorlink places network equipment on a floor plan and keeps a
// connection diagram of it in sync.
package main

import "log"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	Execute()
}
