package fixup

import (
	"errors"
	"f1timing/pkg/codec"
	"f1timing/pkg/message"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

type TypeCount struct {
	Name  string
	Count int64
}

// Shape of a recording: size and how many messages of each type it holds
type FileStats struct {
	FileName     string
	FileLength   int64
	MessageCount int64
	ByType       []TypeCount // most frequent first
}

func (s FileStats) AverageMessageLength() int64 {
	if s.MessageCount == 0 {
		return 0
	}
	return s.FileLength / s.MessageCount
}

func Inspect(path string) (stats FileStats, err error) {
	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open recording: %w", err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		err = fmt.Errorf("failed to stat recording: %w", err)
		return
	}
	stats.FileName = filepath.Base(path)
	stats.FileLength = info.Size()

	counts := make(map[string]int64)
	decoder := codec.NewReader(file)
	for {
		var msg message.Message
		msg, err = decoder.Read()
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			err = fmt.Errorf("failed reading message %d: %w", stats.MessageCount+1, err)
			return
		}
		stats.MessageCount++
		counts[message.NameOf(msg)]++
	}

	for name, count := range counts {
		stats.ByType = append(stats.ByType, TypeCount{Name: name, Count: count})
	}
	sort.Slice(stats.ByType, func(i, j int) bool {
		if stats.ByType[i].Count != stats.ByType[j].Count {
			return stats.ByType[i].Count > stats.ByType[j].Count
		}
		return stats.ByType[i].Name < stats.ByType[j].Name
	})
	return
}
