package comment

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"tender-collab-api/internal/application/access"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

// fakeStore 内存存储
type fakeStore struct {
	projects map[string]*entity.Project
	roles    map[string]entity.MemberRole
	chapters map[string]*entity.Chapter
	users    map[string]*entity.User
	comments map[string]*entity.Comment
	seq      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*entity.Project),
		roles:    make(map[string]entity.MemberRole),
		chapters: make(map[string]*entity.Chapter),
		users:    make(map[string]*entity.User),
		comments: make(map[string]*entity.Comment),
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

func (s *fakeStore) addMember(projectID, userID string, role entity.MemberRole) {
	s.roles[projectID+"/"+userID] = role
}

func (s *fakeStore) addUser(id, username string) *entity.User {
	u := &entity.User{ID: id, Username: username, Role: entity.UserRoleEditor, Active: true}
	s.users[id] = u
	return u
}

func (s *fakeStore) addChapter(projectID, number, title string) *entity.Chapter {
	ch := entity.NewChapter(projectID, nil, number, title, 1)
	ch.ID = uuid.NewString()
	s.chapters[ch.ID] = ch
	return ch
}

// nextTime 单调递增时间戳，保证列表排序确定
func (s *fakeStore) nextTime() time.Time {
	s.seq++
	return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

type fakeProjectRepo struct {
	store *fakeStore
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *entity.Project) error { return nil }

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

func (r *fakeProjectRepo) Update(ctx context.Context, project *entity.Project) error { return nil }

func (r *fakeProjectRepo) Delete(ctx context.Context, id string) error { return nil }

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

func (r *fakeChapterRepo) Create(ctx context.Context, chapter *entity.Chapter) error { return nil }

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

func (r *fakeChapterRepo) Update(ctx context.Context, chapter *entity.Chapter) error { return nil }

func (r *fakeChapterRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *fakeChapterRepo) ListByProject(ctx context.Context, projectID string, filter *repository.ChapterFilter) ([]*entity.Chapter, error) {
	return nil, nil
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

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	var users []*entity.User
	for _, id := range ids {
		if u, ok := r.store.users[id]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

type fakeCommentRepo struct {
	store *fakeStore
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = r.store.nextTime()
	comment.UpdatedAt = comment.CreatedAt
	cp := *comment
	r.store.comments[comment.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	c, ok := r.store.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, comment *entity.Comment) error {
	comment.UpdatedAt = r.store.nextTime()
	cp := *comment
	r.store.comments[comment.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	delete(r.store.comments, id)
	return nil
}

func (r *fakeCommentRepo) ListByChapter(ctx context.Context, chapterID string, includeResolved bool) ([]*entity.Comment, error) {
	var comments []*entity.Comment
	for _, c := range r.store.comments {
		if c.ChapterID != chapterID {
			continue
		}
		if !includeResolved && c.IsResolved {
			continue
		}
		cp := *c
		comments = append(comments, &cp)
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// commentEnv 批注服务测试环境，时钟可控
type commentEnv struct {
	store *fakeStore
	svc   *Service
	now   time.Time
}

func newCommentEnv() *commentEnv {
	store := newFakeStore()
	projectRepo := &fakeProjectRepo{store: store}
	checker := access.NewChecker(projectRepo)

	svc := NewService(checker,
		&fakeCommentRepo{store: store},
		&fakeChapterRepo{store: store},
		&fakeUserRepo{store: store})

	env := &commentEnv{
		store: store,
		svc:   svc,
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return env.now }
	return env
}

func intPtr(n int) *int {
	return &n
}
