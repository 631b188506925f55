package main

import (
	"fmt"

	"github.com/talkbase/chat-service/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
