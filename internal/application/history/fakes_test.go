package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tender-collab-api/internal/application/access"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
)

// fakeStore 内存存储，事务通过互斥锁整体串行化
type fakeStore struct {
	mu       sync.Mutex
	projects map[string]*entity.Project
	roles    map[string]entity.MemberRole
	chapters map[string]*entity.Chapter
	versions []*entity.ProjectVersion
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*entity.Project),
		roles:    make(map[string]entity.MemberRole),
		chapters: make(map[string]*entity.Chapter),
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

func (s *fakeStore) addChapter(projectID, number, title string, content *string, orderIndex int) *entity.Chapter {
	ch := entity.NewChapter(projectID, nil, number, title, orderIndex)
	ch.ID = uuid.NewString()
	ch.Content = content
	s.chapters[ch.ID] = ch
	return ch
}

// serialTx 用互斥锁模拟事务串行化，行锁语义由整个事务互斥覆盖
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
	var members []*entity.ProjectMember
	for key, role := range r.store.roles {
		if len(key) > len(projectID) && key[:len(projectID)] == projectID {
			members = append(members, &entity.ProjectMember{
				ProjectID: projectID,
				UserID:    key[len(projectID)+1:],
				Role:      role,
			})
		}
	}
	return members, nil
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
		if v.ProjectID != projectID {
			continue
		}
		if filter != nil {
			if filter.ChangeType != "" && v.ChangeType != filter.ChangeType {
				continue
			}
			if filter.ChapterID != nil && (v.ChapterID == nil || *v.ChapterID != *filter.ChapterID) {
				continue
			}
		}
		cp := *v
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VersionNumber > items[j].VersionNumber
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

func (r *fakeVersionRepo) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	for _, v := range r.store.versions {
		if v.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func strPtr(s string) *string {
	return &s
}

// historyEnv 版本历史服务测试环境
type historyEnv struct {
	store       *fakeStore
	svc         *Service
	alloc       *Allocator
	chapterRepo *fakeChapterRepo
	versionRepo *fakeVersionRepo
}

func newHistoryEnv() *historyEnv {
	store := newFakeStore()
	tx := &serialTx{store: store}
	projectRepo := &fakeProjectRepo{store: store}
	chapterRepo := &fakeChapterRepo{store: store}
	versionRepo := &fakeVersionRepo{store: store}
	checker := access.NewChecker(projectRepo)
	alloc := NewAllocator(projectRepo, chapterRepo, versionRepo, tx)
	svc := NewService(checker, alloc, versionRepo, chapterRepo, tx, nil, nil)
	return &historyEnv{
		store:       store,
		svc:         svc,
		alloc:       alloc,
		chapterRepo: chapterRepo,
		versionRepo: versionRepo,
	}
}
