package main

import (
	"io"
	"log"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/stratumproto/proxywire"
	"github.com/stratumproto/proxywire/halt"
)

func main() {
	ln, err := net.Listen("tcp", "127.0.0.1:9090")
	if err != nil {
		log.Fatal(err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer zapLogger.Sync()

	proxyListener := proxywire.NewListener(ln,
		proxywire.WithProtocolConfig(proxywire.ProtocolConfig{
			Versions: []proxywire.ProtocolVersion{proxywire.ProtocolV1, proxywire.ProtocolV2},
		}),
		proxywire.WithLogger(zapLogger),
		proxywire.WithPostReadHeader(loggingHeader),
	)

	supervisor := halt.New(halt.WithLogger(zapLogger))
	supervisor.HaltOnSignal()

	supervisor.Spawn(func(tw halt.Tripwire) {
		acceptLoop(proxyListener, supervisor, tw)
	})
	// Per-connection handlers spawned afterwards by acceptLoop are
	// fire-and-forget from the supervisor's point of view: only the
	// accept loop itself is guaranteed to be joined below.
	supervisor.Ready()

	if err := supervisor.Join(30 * time.Second); err != nil {
		logrus.WithError(err).Error("server shut down uncleanly")
	}
}

func acceptLoop(ln *proxywire.Listener, supervisor *halt.HaltHandle, tw halt.Tripwire) {
	go func() {
		<-tw.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-tw.Done():
				return
			default:
				logrus.WithError(err).Warn("accept failed")
				return
			}
		}

		supervisor.Spawn(func(tw halt.Tripwire) {
			serve(conn, tw)
		})
	}
}

func serve(conn net.Conn, tw halt.Tripwire) {
	defer conn.Close()

	go func() {
		<-tw.Done()
		conn.Close()
	}()

	if _, err := io.Copy(io.Discard, conn); err != nil {
		logrus.WithError(err).Debug("connection closed")
	}
}

func loggingHeader(stream *proxywire.ProxyStream, err error) {
	if err != nil {
		logrus.WithError(err).Error("failed to parse proxy header")
		return
	}
	info, _ := proxywire.NewProxyInfo(stream.OriginalSource(), stream.OriginalDestination())
	logrus.WithField("proxy_info", info.String()).Info("successfully parsed proxy header")
}
