// Package main provides the cvpack CLI for configuring, building and packaging OpenCV.
package main

func main() {
	Execute()
}
