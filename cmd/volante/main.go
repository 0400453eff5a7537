// Command volante turns body poses seen by a webcam into racing-game key presses.
package main

import "runtime"

func init() {
	// the preview window and the tray need the main OS thread
	runtime.LockOSThread()
}

func main() {
	Execute()
}
