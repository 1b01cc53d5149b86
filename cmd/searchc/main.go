// Command searchc is the client binary that exercises the wire protocol
// from the command line, restoring the general-purpose client the
// original_source/src/bin/cli_client.rs hardcodes to a single query into
// a small urfave/cli App with a --request-kind switch.
package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/searchd/internal/protocol"
)

func main() {
	app := &cli.App{
		Name:  "searchc",
		Usage: "send one request to a searchd server and print the response",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server-address",
				Value: "127.0.0.1:8080",
			},
			&cli.StringFlag{
				Name:     "request-kind",
				Required: true,
				Usage:    "ping | index | file",
			},
			&cli.StringFlag{
				Name:  "payload",
				Usage: "query string (index) or file path (file); ignored by ping",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	kind := c.String("request-kind")
	payload := c.String("payload")

	req, err := buildRequest(kind, payload)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", c.String("server-address"), 10*time.Second)
	if err != nil {
		return fmt.Errorf("searchc: connect: %w", err)
	}
	defer conn.Close()

	if err := protocol.EncodeRequest(conn, req); err != nil {
		return fmt.Errorf("searchc: send request: %w", err)
	}

	resp, err := protocol.DecodeResponse(conn)
	if err != nil {
		return fmt.Errorf("searchc: read response: %w", err)
	}

	printResponse(resp)
	return nil
}

func buildRequest(kind, payload string) (protocol.Request, error) {
	switch kind {
	case "ping":
		if payload != "" {
			fmt.Fprintln(os.Stderr, "searchc: warning: --payload is ignored for ping")
		}
		return protocol.Request{Kind: protocol.KindPing}, nil
	case "index":
		if payload == "" {
			return protocol.Request{}, fmt.Errorf("searchc: --payload is required for --request-kind=index")
		}
		return protocol.Request{Kind: protocol.KindQuery, Payload: payload}, nil
	case "file":
		if payload == "" {
			return protocol.Request{}, fmt.Errorf("searchc: --payload is required for --request-kind=file")
		}
		return protocol.Request{Kind: protocol.KindQueryFile, Payload: payload}, nil
	default:
		return protocol.Request{}, fmt.Errorf("searchc: unknown --request-kind %q", kind)
	}
}

func printResponse(f protocol.Frame) {
	switch f.Kind {
	case protocol.KindPong:
		fmt.Println("pong")
	case protocol.KindError:
		fmt.Println("error:", string(f.Payload))
	case protocol.KindQueryResult:
		fmt.Println(string(f.Payload))
	case protocol.KindFileResult:
		os.Stdout.Write(f.Payload)
	}
}
