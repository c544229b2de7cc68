// Command customtag rewrites custom template tags in HTML files.
package main

func main() {
	Execute()
}
