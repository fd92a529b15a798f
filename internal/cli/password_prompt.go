package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errPasswordMismatch = errors.New("passwords do not match")

// secretReader reads one line without echoing it.
type secretReader func() (string, error)

func terminalSecretReader(stdin *os.File) secretReader {
	return func() (string, error) {
		raw, err := readSecretNoEcho(stdin)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
}

// promptNewPassword asks twice and requires both answers to match.
func promptNewPassword(out io.Writer, read secretReader) (string, error) {
	_, _ = fmt.Fprint(out, "New password: ")
	first, err := read()
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	_, _ = fmt.Fprint(out, "Repeat password: ")
	second, err := read()
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

func readSecretLine(stdin *os.File) ([]byte, error) {
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
