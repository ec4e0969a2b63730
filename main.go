package main

import (
	"fmt"

	_ "github.com/agentuity/go-ttlcache/cache"
	_ "github.com/agentuity/go-ttlcache/codec"
	_ "github.com/agentuity/go-ttlcache/config"
	_ "github.com/agentuity/go-ttlcache/logger"
	_ "github.com/agentuity/go-ttlcache/remote"
)

func main() {
	fmt.Println("Hi")
}
