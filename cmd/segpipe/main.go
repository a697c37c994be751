// Command segpipe serves and fetches segmented objects.
package main

func main() {
	Execute()
}
