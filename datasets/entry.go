package datasets

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one (image, target, text) triple. Paths may be local files or
// remote objects understood by the dataset's Source (e.g. "s3://bucket/key").
type Entry struct {
	ImagePath  string `json:"image"`
	TargetPath string `json:"target"`
	Text       string `json:"text"`
}

// UnmarshalJSON accepts both the object form and the positional
// ["image", "target", "text"] form used by older split dumps.
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var triple []string
		if err := json.Unmarshal(data, &triple); err != nil {
			return err
		}
		if len(triple) != 3 {
			return fmt.Errorf("entry must have 3 elements, got %d", len(triple))
		}
		*e = Entry{ImagePath: triple[0], TargetPath: triple[1], Text: triple[2]}
		return nil
	}

	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// Zip pairs positionally aligned lists into entries. Lists of different
// lengths return ErrMisaligned instead of silently mispairing.
func Zip(images, targets, texts []string) ([]Entry, error) {
	if len(images) != len(targets) || len(images) != len(texts) {
		return nil, fmt.Errorf("%d images, %d targets, %d texts: %w",
			len(images), len(targets), len(texts), ErrMisaligned)
	}
	entries := make([]Entry, len(images))
	for i := range images {
		entries[i] = Entry{ImagePath: images[i], TargetPath: targets[i], Text: texts[i]}
	}
	return entries, nil
}

// Unzip splits entries back into three parallel lists.
func Unzip(entries []Entry) (images, targets, texts []string) {
	images = make([]string, len(entries))
	targets = make([]string, len(entries))
	texts = make([]string, len(entries))
	for i, e := range entries {
		images[i] = e.ImagePath
		targets[i] = e.TargetPath
		texts[i] = e.Text
	}
	return images, targets, texts
}
