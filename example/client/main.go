package main

import (
	"log"
	"net"
	"time"

	"github.com/stratumproto/proxywire"
)

func main() {
	connector := proxywire.NewConnector(proxywire.ProtocolV2)

	conn, err := connector.DialAndWrite(
		"tcp", "127.0.0.1:9090",
		&proxywire.Endpoint{IP: net.IPv4(127, 0, 0, 1), Port: 12345},
		&proxywire.Endpoint{IP: net.IPv4(127, 0, 0, 1), Port: 56789},
	)
	if err != nil {
		log.Println("err:", err)
		return
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Write([]byte("hello\n")); err != nil {
		log.Println("write payload fail:", err)
	}
}
