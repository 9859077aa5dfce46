package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/folioadmin/folioadmin/internal/apiclient"
)

// skillsBatch is the body of POST /skills/createSkill/:id.
type skillsBatch struct {
	Skills []Skill `json:"skills" validate:"min=1,dive"`
}

// AddSkills appends skills to an existing category.
func (s *Service) AddSkills(ctx context.Context, categoryID string, skills ...Skill) apiclient.Response {
	if strings.TrimSpace(categoryID) == "" {
		return apiclient.Failure(apiclient.KindValidation, "category id is required")
	}
	path := fmt.Sprintf("%s/createSkill/%s", SkillSets.Path, url.PathEscape(categoryID))
	return s.write(ctx, SkillSets, http.MethodPost, path, skillsBatch{Skills: skills})
}

// SkillPatch changes some fields of one skill. Nil fields are left as they
// are on the backend.
type SkillPatch struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Level *string `json:"level,omitempty"`
}

// UpdateSkill patches a single skill with the fields set in patch.
func (s *Service) UpdateSkill(ctx context.Context, skillID string, patch SkillPatch) apiclient.Response {
	if strings.TrimSpace(skillID) == "" {
		return apiclient.Failure(apiclient.KindValidation, "skill id is required")
	}
	if patch.Name == nil && patch.Icon == nil && patch.Level == nil {
		return apiclient.Failure(apiclient.KindValidation, "nothing to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return apiclient.Failure(apiclient.KindValidation, "name is required")
	}
	if patch.Icon != nil && strings.TrimSpace(*patch.Icon) == "" {
		return apiclient.Failure(apiclient.KindValidation, "icon is required")
	}
	path := fmt.Sprintf("%s/%s", SkillSets.Path, url.PathEscape(skillID))
	return s.write(ctx, SkillSets, http.MethodPatch, path, patch)
}

// DeleteSkill removes a single skill; Delete(SkillSets, id) removes a
// whole category.
func (s *Service) DeleteSkill(ctx context.Context, skillID string) apiclient.Response {
	if strings.TrimSpace(skillID) == "" {
		return apiclient.Failure(apiclient.KindValidation, "skill id is required")
	}
	token, res, ok := s.requireToken()
	if !ok {
		return res
	}

	path := fmt.Sprintf("%s/deleteSkill/%s", SkillSets.Path, url.PathEscape(skillID))
	res = s.api.Do(ctx, apiclient.Request{URL: path, Method: http.MethodDelete, Token: token})
	s.logOutcome(SkillSets, "delete", path, res)
	return res
}
