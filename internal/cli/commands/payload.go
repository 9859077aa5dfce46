package commands

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/folioadmin/folioadmin/internal/content"
)

// readPayload decodes a YAML (or JSON) file into v. "-" reads stdin.
func readPayload(path string, stdin io.Reader, v any) error {
	if path == "" {
		return fmt.Errorf("a payload file is required (use -f payload.yaml)")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse payload %s: %w", path, err)
	}
	return nil
}

// createPayload returns an empty payload for creating a record of r.
func createPayload(r content.Resource) any {
	switch r.Name {
	case content.Blogs.Name:
		return &content.Blog{}
	case content.BlogCategories.Name:
		return &content.BlogCategory{}
	case content.Experiences.Name:
		return &content.Experience{}
	case content.SkillSets.Name:
		return &content.SkillSet{}
	case content.Projects.Name:
		return &content.Project{}
	case content.Footers.Name:
		return &content.FooterContent{}
	}
	return nil
}

// updatePayload returns an empty payload for updating a record of r. Skill
// categories are renamed through their own endpoint.
func updatePayload(r content.Resource) any {
	if r.Name == content.SkillSets.Name {
		return &content.SkillCategory{}
	}
	return createPayload(r)
}

// attachThumbnail points a multipart payload at a local image.
func attachThumbnail(payload any, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("thumbnail: %w", err)
	}

	switch p := payload.(type) {
	case *content.Blog:
		p.ThumbnailPath = path
	case *content.Project:
		p.ThumbnailPath = path
	default:
		return fmt.Errorf("this resource does not take a thumbnail")
	}
	return nil
}

// printItem writes a record as YAML.
func printItem(w io.Writer, item content.Item) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(item)); err != nil {
		return fmt.Errorf("failed to print record: %w", err)
	}
	return enc.Close()
}
