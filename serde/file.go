package serde

import (
	"bufio"
	"github.com/cockroachdb/errors"
	"os"
	"streamhist/hist"
	"strings"
)

// IsJSON reports whether path names a JSON file. Every other file is
// MessagePack.
func IsJSON(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".json")
}

func ReadFile(path string) (*hist.StreamHist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	if IsJSON(path) {
		return ReadJSON(reader)
	}
	return ReadMsgpack(reader)
}

func WriteFile(path string, h *hist.StreamHist) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	writer := bufio.NewWriter(file)
	if IsJSON(path) {
		err = WriteJSON(writer, h)
	} else {
		err = WriteMsgpack(writer, h)
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return writer.Flush()
}
