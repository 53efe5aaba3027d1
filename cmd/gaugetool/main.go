// Command gaugetool reads health gauges from screenshots and projects when
// tracked objects will fail.
package main

func main() {
	Execute()
}
