package commands

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/inlet-labs/shs"
)

// runChat relays lines between stdin/stdout and conn until either side
// closes. It's intentionally simple: one goroutine drains conn to stdout,
// the main goroutine copies stdin lines to conn.
func runChat(conn *shs.Conn) error {
	errCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			fmt.Printf("< %s\n", scanner.Text())
		}
		errCh <- scanner.Err()
	}()

	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		if _, err := fmt.Fprintf(conn, "%s\n", stdin.Text()); err != nil {
			return err
		}
	}

	conn.Close()
	if err := <-errCh; err != nil && err != io.EOF {
		return err
	}
	return nil
}

func dialTCP(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}
