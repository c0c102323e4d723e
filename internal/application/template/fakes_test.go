package template

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

// fakeStore 内存存储，事务通过互斥锁整体串行化
type fakeStore struct {
	projects  map[string]*entity.Project
	roles     map[string]entity.MemberRole
	chapters  map[string]*entity.Chapter
	templates map[string]*entity.Template
	seq       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:  make(map[string]*entity.Project),
		roles:     make(map[string]entity.MemberRole),
		chapters:  make(map[string]*entity.Chapter),
		templates: make(map[string]*entity.Template),
	}
}

func (s *fakeStore) addProject(name, ownerID string) *entity.Project {
	p := &entity.Project{
		ID:      uuid.NewString(),
		Name:    name,
		Status:  entity.ProjectStatusActive,
		OwnerID: ownerID,
	}
	s.projects[p.ID] = p
	s.roles[p.ID+"/"+ownerID] = entity.MemberRoleOwner
	return p
}

func (s *fakeStore) addChapter(projectID string, parentID *string, number, title string, orderIndex int) *entity.Chapter {
	ch := entity.NewChapter(projectID, parentID, number, title, orderIndex)
	ch.ID = uuid.NewString()
	s.chapters[ch.ID] = ch
	return ch
}

// nextTime 单调递增时间戳，保证列表排序确定
func (s *fakeStore) nextTime() time.Time {
	s.seq++
	return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

type noopTx struct{}

func (noopTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProjectRepo struct {
	store *fakeStore
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	r.store.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	p, ok := r.store.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Project, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	r.store.projects[project.ID] = project
	return nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	delete(r.store.projects, id)
	return nil
}

func (r *fakeProjectRepo) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return repository.NewPagedResult[*entity.Project](nil, 0, pagination), nil
}

func (r *fakeProjectRepo) GetMemberRole(ctx context.Context, projectID, userID string) (entity.MemberRole, error) {
	return r.store.roles[projectID+"/"+userID], nil
}

func (r *fakeProjectRepo) AddMember(ctx context.Context, member *entity.ProjectMember) error {
	r.store.roles[member.ProjectID+"/"+member.UserID] = member.Role
	return nil
}

func (r *fakeProjectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	delete(r.store.roles, projectID+"/"+userID)
	return nil
}

func (r *fakeProjectRepo) ListMembers(ctx context.Context, projectID string) ([]*entity.ProjectMember, error) {
	return nil, nil
}

type fakeChapterRepo struct {
	store *fakeStore
}

func (r *fakeChapterRepo) Create(ctx context.Context, chapter *entity.Chapter) error {
	if chapter.ID == "" {
		chapter.ID = uuid.NewString()
	}
	cp := *chapter
	r.store.chapters[chapter.ID] = &cp
	return nil
}

func (r *fakeChapterRepo) GetByID(ctx context.Context, id string) (*entity.Chapter, error) {
	ch, ok := r.store.chapters[id]
	if !ok {
		return nil, nil
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeChapterRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Chapter, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeChapterRepo) Update(ctx context.Context, chapter *entity.Chapter) error {
	cp := *chapter
	r.store.chapters[chapter.ID] = &cp
	return nil
}

func (r *fakeChapterRepo) Delete(ctx context.Context, id string) error {
	delete(r.store.chapters, id)
	return nil
}

func (r *fakeChapterRepo) ListByProject(ctx context.Context, projectID string, filter *repository.ChapterFilter) ([]*entity.Chapter, error) {
	var chapters []*entity.Chapter
	for _, ch := range r.store.chapters {
		if ch.ProjectID != projectID {
			continue
		}
		cp := *ch
		chapters = append(chapters, &cp)
	}
	sort.Slice(chapters, func(i, j int) bool {
		if chapters[i].OrderIndex != chapters[j].OrderIndex {
			return chapters[i].OrderIndex < chapters[j].OrderIndex
		}
		return chapters[i].ChapterNumber < chapters[j].ChapterNumber
	})
	return chapters, nil
}

func (r *fakeChapterRepo) UpdateContent(ctx context.Context, id string, title *string, content *string, status entity.ChapterStatus) error {
	return nil
}

func (r *fakeChapterRepo) UpdateLock(ctx context.Context, id string, lockedBy *string, lockedAt *time.Time) error {
	return nil
}

func (r *fakeChapterRepo) UpdateStatus(ctx context.Context, id string, status entity.ChapterStatus) error {
	return nil
}

func (r *fakeChapterRepo) CountByStatus(ctx context.Context, projectID string) (map[entity.ChapterStatus]int64, error) {
	return nil, nil
}

type fakeTemplateRepo struct {
	store *fakeStore
}

func (r *fakeTemplateRepo) Create(ctx context.Context, template *entity.Template) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	template.CreatedAt = r.store.nextTime()
	cp := *template
	r.store.templates[template.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*entity.Template, error) {
	t, ok := r.store.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTemplateRepo) Update(ctx context.Context, template *entity.Template) error {
	cp := *template
	r.store.templates[template.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) Delete(ctx context.Context, id string) error {
	delete(r.store.templates, id)
	return nil
}

func (r *fakeTemplateRepo) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Template], error) {
	var items []*entity.Template
	for _, t := range r.store.templates {
		cp := *t
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	total := int64(len(items))
	start := pagination.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + pagination.Limit()
	if end > len(items) {
		end = len(items)
	}
	return repository.NewPagedResult(items[start:end], total, pagination), nil
}

// templateEnv 模板服务测试环境
type templateEnv struct {
	store       *fakeStore
	svc         *Service
	chapterRepo *fakeChapterRepo
}

func newTemplateEnv() *templateEnv {
	store := newFakeStore()
	projectRepo := &fakeProjectRepo{store: store}
	chapterRepo := &fakeChapterRepo{store: store}
	templateRepo := &fakeTemplateRepo{store: store}

	svc := NewService(templateRepo, projectRepo, chapterRepo, noopTx{})
	return &templateEnv{store: store, svc: svc, chapterRepo: chapterRepo}
}

func editorActor(id string) entity.Actor {
	return entity.Actor{UserID: id, Role: entity.UserRoleEditor}
}
