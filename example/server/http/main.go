package main

import (
	"log"
	"net"
	"net/http"

	"github.com/stratumproto/proxywire"
)

var addr = "127.0.0.1:9090"

func main() {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}

	proxyListener := proxywire.NewListener(ln, proxywire.WithProtocolConfig(proxywire.ProtocolConfig{
		Versions: []proxywire.ProtocolVersion{proxywire.ProtocolV1, proxywire.ProtocolV2},
	}))

	srv := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Println("recv request url:", r.URL.Path, "remote:", r.RemoteAddr)
		}),
	}

	err = srv.Serve(proxyListener)
	log.Println(err)
}
