package repositoryImp

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agrocal/entities"
	"agrocal/pkg/activity/repository"
)

type actRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ActivityRepository { return &actRepo{db} }

func (r *actRepo) Get(id string) (*entities.Activity, error) {
	var a entities.Activity
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *actRepo) Create(a *entities.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.Create(a).Error
}

func (r *actRepo) Update(id string, fields map[string]any) (*entities.Activity, error) {
	res := r.db.Model(&entities.Activity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(id)
}

func (r *actRepo) Delete(id string) error {
	res := r.db.Delete(&entities.Activity{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *actRepo) Find(f repository.Filter) ([]entities.Activity, error) {
	q := r.db.Model(&entities.Activity{})
	if f.NameLike != "" {
		q = q.Where("name LIKE ?", "%"+f.NameLike+"%")
	}
	if f.DateFrom != nil {
		q = q.Where("scheduled_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		if f.DateToExclusive {
			q = q.Where("scheduled_date < ?", *f.DateTo)
		} else {
			q = q.Where("scheduled_date <= ?", *f.DateTo)
		}
	}
	if len(f.StatusIn) > 0 {
		q = q.Where("status IN ?", f.StatusIn)
	}
	if f.ExcludeID != "" {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	var out []entities.Activity
	if err := q.Order("scheduled_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actRepo) BlockStats(blockNumber int) (repository.BlockStats, error) {
	var acts []entities.Activity
	like := fmt.Sprintf("%%Bloque %d%%", blockNumber)
	if err := r.db.Where("name LIKE ?", like).Find(&acts).Error; err != nil {
		return repository.BlockStats{}, err
	}
	var st repository.BlockStats
	st.TotalActivities = len(acts)
	for _, a := range acts {
		if a.Status == entities.StatusCompleted {
			st.CompletedActivities++
		}
		if a.PlannedHectares != nil {
			st.TotalPlannedHectares += *a.PlannedHectares
		}
		if a.CompletedHectares != nil {
			st.TotalCompletedHectares += *a.CompletedHectares
		}
	}
	return st, nil
}

func (r *actRepo) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&entities.Activity{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *actRepo) LogReschedule(ev *entities.RescheduleEvent) error {
	return r.db.Create(ev).Error
}
