package timerecording

import (
	errors "github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/codec"
	"github.com/frahmantamala/timekeeper/internal/core/common/validation"
)

const (
	ProjectsDirectory = "projects"
	MaxProjectName    = 30
	MaxProjectID      = 100_000_000 - 1
)

type ProjectID int64

type Project struct {
	ID   ProjectID
	Name string
}

func NewProject(id ProjectID, name string) (Project, error) {
	v := validation.NewValidator()
	v.Field("project_id", int64(id)).
		MinInt(1, errors.ErrCodeInvalidID).
		MaxInt(MaxProjectID, errors.ErrCodeInvalidID)
	v.Field("project_name", name).
		Required().
		MaxLength(MaxProjectName, errors.ErrCodeInvalidName)
	if err := v.Validate(); err != nil {
		return Project{}, err
	}
	return Project{ID: id, Name: name}, nil
}

func (p Project) Index() int64 {
	return int64(p.ID)
}

func (p Project) Fields() codec.Fields {
	return codec.Fields{}.
		AddInt("id", int64(p.ID)).
		Add("name", p.Name)
}

func DeserializeProject(text string) (Project, error) {
	r, err := codec.Decode(text)
	if err != nil {
		return Project{}, err
	}
	id, err := r.Int("id")
	if err != nil {
		return Project{}, err
	}
	name, err := r.String("name")
	if err != nil {
		return Project{}, err
	}
	return NewProject(ProjectID(id), name)
}
