package main

import (
	"github.com/Laisky/laisky-blog-cms/cmd"
)

func main() {
	cmd.Execute()
}
