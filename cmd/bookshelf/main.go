package main

import "github.com/EgorLis/my-books/cmd/bookshelf/commands"

// @title           my-books API
// @version         1.0
// @description     Каталог книг с оценками и обложками.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	commands.Execute()
}
