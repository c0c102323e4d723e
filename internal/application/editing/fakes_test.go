package editing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tender-collab-api/internal/application/access"
	"tender-collab-api/internal/application/history"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

// fakeStore 内存存储，事务通过互斥锁整体串行化
type fakeStore struct {
	mu       sync.Mutex
	projects map[string]*entity.Project
	roles    map[string]entity.MemberRole
	chapters map[string]*entity.Chapter
	users    map[string]*entity.User
	versions []*entity.ProjectVersion
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*entity.Project),
		roles:    make(map[string]entity.MemberRole),
		chapters: make(map[string]*entity.Chapter),
		users:    make(map[string]*entity.User),
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

func (s *fakeStore) addChapter(projectID string, parentID *string, number, title string, orderIndex int) *entity.Chapter {
	ch := entity.NewChapter(projectID, parentID, number, title, orderIndex)
	ch.ID = uuid.NewString()
	s.chapters[ch.ID] = ch
	return ch
}

type serialTx struct {
	store *fakeStore
}

func (t *serialTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
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
	var items []*entity.Project
	for _, p := range r.store.projects {
		if r.store.roles[p.ID+"/"+userID] != "" {
			cp := *p
			items = append(items, &cp)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
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
		if filter != nil {
			if filter.Status != "" && ch.Status != filter.Status {
				continue
			}
			if filter.ParentID != nil && (ch.ParentID == nil || *ch.ParentID != *filter.ParentID) {
				continue
			}
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
	ch := r.store.chapters[id]
	if title != nil {
		ch.Title = *title
	}
	if content != nil {
		ch.Content = content
	}
	ch.Status = status
	ch.UpdatedAt = time.Now()
	return nil
}

func (r *fakeChapterRepo) UpdateLock(ctx context.Context, id string, lockedBy *string, lockedAt *time.Time) error {
	ch := r.store.chapters[id]
	ch.LockedBy = lockedBy
	ch.LockedAt = lockedAt
	return nil
}

func (r *fakeChapterRepo) UpdateStatus(ctx context.Context, id string, status entity.ChapterStatus) error {
	ch := r.store.chapters[id]
	ch.Status = status
	return nil
}

func (r *fakeChapterRepo) CountByStatus(ctx context.Context, projectID string) (map[entity.ChapterStatus]int64, error) {
	counts := make(map[entity.ChapterStatus]int64)
	for _, ch := range r.store.chapters {
		if ch.ProjectID == projectID {
			counts[ch.Status]++
		}
	}
	return counts, nil
}

type fakeVersionRepo struct {
	store *fakeStore
}

func (r *fakeVersionRepo) Create(ctx context.Context, version *entity.ProjectVersion) error {
	for _, v := range r.store.versions {
		if v.ProjectID == version.ProjectID && v.VersionNumber == version.VersionNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	version.CreatedAt = time.Now()
	r.store.versions = append(r.store.versions, version)
	return nil
}

func (r *fakeVersionRepo) GetByID(ctx context.Context, projectID, versionID string) (*entity.ProjectVersion, error) {
	for _, v := range r.store.versions {
		if v.ProjectID == projectID && v.ID == versionID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeVersionRepo) GetByNumber(ctx context.Context, projectID string, versionNumber int) (*entity.ProjectVersion, error) {
	for _, v := range r.store.versions {
		if v.ProjectID == projectID && v.VersionNumber == versionNumber {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeVersionRepo) MaxVersionNumber(ctx context.Context, projectID string) (int, error) {
	max := 0
	for _, v := range r.store.versions {
		if v.ProjectID == projectID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (r *fakeVersionRepo) ListByProject(ctx context.Context, projectID string, filter *repository.VersionFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectVersion], error) {
	var items []*entity.ProjectVersion
	for _, v := range r.store.versions {
		if v.ProjectID == projectID {
			cp := *v
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VersionNumber > items[j].VersionNumber
	})
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

func (r *fakeVersionRepo) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	for _, v := range r.store.versions {
		if v.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.store.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.store.users[user.ID] = user
	return nil
}

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

func strPtr(s string) *string {
	return &s
}

// editEnv 协同编辑服务测试环境，时钟可控
type editEnv struct {
	store       *fakeStore
	svc         *Service
	chapterRepo *fakeChapterRepo
	versionRepo *fakeVersionRepo
	now         time.Time
}

const testLockTimeout = 30 * time.Minute

func newEditEnv() *editEnv {
	store := newFakeStore()
	tx := &serialTx{store: store}
	projectRepo := &fakeProjectRepo{store: store}
	chapterRepo := &fakeChapterRepo{store: store}
	versionRepo := &fakeVersionRepo{store: store}
	userRepo := &fakeUserRepo{store: store}
	checker := access.NewChecker(projectRepo)
	alloc := history.NewAllocator(projectRepo, chapterRepo, versionRepo, tx)

	svc := NewService(checker, chapterRepo, projectRepo, userRepo, tx,
		alloc, nil, nil, testLockTimeout, time.Minute)

	env := &editEnv{
		store:       store,
		svc:         svc,
		chapterRepo: chapterRepo,
		versionRepo: versionRepo,
		now:         time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return env.now }
	return env
}

func (e *editEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}
