package repositories

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/apperr"
	"github.com/irisvest/backend/internal/feed"
	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/store"
	"github.com/irisvest/backend/internal/store/storetest"
)

type postFixture struct {
	repo      *MongoPostRepository
	posts     store.Collection
	users     *storetest.Collection
	companies *storetest.Collection
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	posts := storetest.NewCollection()
	users := storetest.NewCollection()
	companies := storetest.NewCollection()
	return &postFixture{
		repo:      NewMongoPostRepository(posts, users, companies),
		posts:     posts,
		users:     users,
		companies: companies,
	}
}

func (f *postFixture) addUser(t *testing.T, accreditation models.Accreditation) *models.User {
	t.Helper()
	user := &models.User{
		ID:            primitive.NewObjectID(),
		Role:          models.UserRoleUser,
		Accreditation: accreditation,
	}
	if err := f.users.InsertOne(context.Background(), user); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return user
}

func (f *postFixture) addPost(t *testing.T, author primitive.ObjectID, audience models.Audience) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:   author,
		Body:     "body",
		Audience: audience,
		Visible:  true,
	}
	if err := f.repo.Create(context.Background(), post, nil); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func (f *postFixture) getUser(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	repo := NewMongoUserRepository(f.users, f.companies)
	user, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	return user
}

func everyoneScope(a models.Accreditation) feed.Scope {
	return feed.Scope{AudienceLevels: models.AudienceLevelsFor(a)}
}

func TestCreatePostUpdatesOwner(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)

	post := f.addPost(t, author.ID, models.AudienceEveryone)

	owner := f.getUser(t, author.ID)
	if owner.PostCount != 1 {
		t.Errorf("post_count = %d, want 1", owner.PostCount)
	}
	if len(owner.PostIDs) != 1 || owner.PostIDs[0] != post.ID {
		t.Errorf("post_ids = %v, want [%s]", owner.PostIDs, post.ID.Hex())
	}
}

func TestCreateInvisiblePostSkipsCount(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)

	post := &models.Post{UserID: author.ID, Body: "draft", Audience: models.AudienceEveryone, Visible: false}
	if err := f.repo.Create(context.Background(), post, nil); err != nil {
		t.Fatalf("create post: %v", err)
	}

	owner := f.getUser(t, author.ID)
	if owner.PostCount != 0 {
		t.Errorf("post_count = %d, want 0 for invisible post", owner.PostCount)
	}
	if len(owner.PostIDs) != 1 {
		t.Errorf("post_ids = %v, the back-reference is kept regardless of visibility", owner.PostIDs)
	}
}

func TestCreatePostMissingOwner(t *testing.T) {
	f := newPostFixture(t)

	post := &models.Post{UserID: primitive.NewObjectID(), Body: "orphan", Audience: models.AudienceEveryone, Visible: true}
	err := f.repo.Create(context.Background(), post, nil)
	if !errors.Is(err, apperr.ErrInternal) {
		t.Errorf("err = %v, want ErrInternal", err)
	}
}

func TestFindByFiltersAudienceGate(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationPurchaser)
	viewer := f.addUser(t, models.AccreditationAccredited)

	f.addPost(t, author.ID, models.AudienceEveryone)
	f.addPost(t, author.ID, models.AudienceAccredited)
	f.addPost(t, author.ID, models.AudienceClient)
	f.addPost(t, author.ID, models.AudiencePurchaser)

	posts, err := f.repo.FindByFilters(context.Background(), viewer.ID, everyoneScope(viewer.Accreditation), feed.Filters{}, nil, 0)
	if err != nil {
		t.Fatalf("FindByFilters: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	for _, p := range posts {
		if p.Audience != models.AudienceEveryone && p.Audience != models.AudienceAccredited {
			t.Errorf("leaked post with audience %s", p.Audience)
		}
	}
}

func TestFindByFiltersOwnPostsBypassGate(t *testing.T) {
	f := newPostFixture(t)
	viewer := f.addUser(t, models.AccreditationNone)

	f.addPost(t, viewer.ID, models.AudiencePurchaser)

	posts, err := f.repo.FindByFilters(context.Background(), viewer.ID, everyoneScope(viewer.Accreditation), feed.Filters{}, nil, 0)
	if err != nil {
		t.Fatalf("FindByFilters: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("got %d posts, the viewer must always see their own", len(posts))
	}
}

func TestFindByFiltersRestrictedAuthors(t *testing.T) {
	f := newPostFixture(t)
	followed := f.addUser(t, models.AccreditationNone)
	stranger := f.addUser(t, models.AccreditationNone)
	viewer := f.addUser(t, models.AccreditationNone)

	f.addPost(t, followed.ID, models.AudienceEveryone)
	f.addPost(t, stranger.ID, models.AudienceEveryone)

	scope := feed.Scope{
		AudienceLevels: models.AudienceLevelsFor(viewer.Accreditation),
		AuthorIDs:      []primitive.ObjectID{followed.ID},
		Restricted:     true,
	}
	posts, err := f.repo.FindByFilters(context.Background(), viewer.ID, scope, feed.Filters{}, nil, 0)
	if err != nil {
		t.Fatalf("FindByFilters: %v", err)
	}
	if len(posts) != 1 || posts[0].UserID != followed.ID {
		t.Errorf("got %v, want only the followed author's post", posts)
	}

	// A restricted scope with no authors matches nothing.
	scope.AuthorIDs = nil
	posts, err = f.repo.FindByFilters(context.Background(), viewer.ID, scope, feed.Filters{}, nil, 0)
	if err != nil {
		t.Fatalf("FindByFilters: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("got %d posts, want none for an empty author set", len(posts))
	}
}

func TestFindByFiltersPagination(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)
	viewer := f.addUser(t, models.AccreditationNone)

	var ids []primitive.ObjectID
	for i := 0; i < 5; i++ {
		ids = append(ids, f.addPost(t, author.ID, models.AudienceEveryone).ID)
	}

	scope := everyoneScope(viewer.Accreditation)
	var got []primitive.ObjectID
	var before *primitive.ObjectID
	for {
		posts, err := f.repo.FindByFilters(context.Background(), viewer.ID, scope, feed.Filters{}, before, 2)
		if err != nil {
			t.Fatalf("FindByFilters: %v", err)
		}
		if len(posts) == 0 {
			break
		}
		for _, p := range posts {
			got = append(got, p.ID)
		}
		last := posts[len(posts)-1].ID
		before = &last
	}

	if len(got) != 5 {
		t.Fatalf("walked %d posts, want 5", len(got))
	}
	// Newest first, no gaps, no duplicates.
	for i, id := range got {
		if id != ids[len(ids)-1-i] {
			t.Fatalf("page walk out of order at %d: got %s, want %s", i, id.Hex(), ids[len(ids)-1-i].Hex())
		}
	}
}

func TestFindByFiltersHighlightInjection(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)
	viewer := f.addUser(t, models.AccreditationNone)

	featured := f.addPost(t, author.ID, models.AudienceEveryone)
	if err := f.repo.Feature(context.Background(), featured.ID, author.ID, true); err != nil {
		t.Fatalf("feature: %v", err)
	}
	for i := 0; i < 5; i++ {
		f.addPost(t, author.ID, models.AudienceEveryone)
	}

	scope := everyoneScope(viewer.Accreditation)
	posts, err := f.repo.FindByFilters(context.Background(), viewer.ID, scope, feed.Filters{}, nil, 4)
	if err != nil {
		t.Fatalf("FindByFilters: %v", err)
	}
	// Four chronological posts plus the spliced highlight.
	if len(posts) != 5 {
		t.Fatalf("got %d posts, want 5", len(posts))
	}
	if posts[3].ID != featured.ID {
		t.Errorf("highlight expected at index 3, got %s", posts[3].ID.Hex())
	}

	// Cursor pages never get the highlight: they stay strictly
	// reverse-chronological, even when a featured post falls inside them.
	before := posts[len(posts)-1].ID
	posts, err = f.repo.FindByFilters(context.Background(), viewer.ID, scope, feed.Filters{}, &before, 4)
	if err != nil {
		t.Fatalf("FindByFilters: %v", err)
	}
	for i := 1; i < len(posts); i++ {
		if posts[i-1].ID.Hex() <= posts[i].ID.Hex() {
			t.Errorf("cursor page out of order at %d", i)
		}
	}
}

func TestEditScopedToOwner(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)
	other := f.addUser(t, models.AccreditationNone)
	post := f.addPost(t, author.ID, models.AudienceEveryone)

	_, err := f.repo.Edit(context.Background(), post.ID, other.ID, models.UpdatePostRequest{Body: "hijacked"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for non-owner edit", err)
	}

	updated, err := f.repo.Edit(context.Background(), post.ID, author.ID, models.UpdatePostRequest{Body: "edited"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if updated.Body != "edited" {
		t.Errorf("body = %q, want %q", updated.Body, "edited")
	}
}

func TestShareInheritsAudience(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationClient)
	sharer := f.addUser(t, models.AccreditationNone)

	original := &models.Post{
		UserID:     author.ID,
		Body:       "gated",
		Audience:   models.AudienceClient,
		Categories: []string{"venture"},
		Visible:    true,
	}
	if err := f.repo.Create(context.Background(), original, nil); err != nil {
		t.Fatalf("create original: %v", err)
	}

	share := &models.Post{UserID: sharer.ID, Body: "look at this", Visible: true}
	if err := f.repo.Share(context.Background(), original.ID, share, nil); err != nil {
		t.Fatalf("share: %v", err)
	}

	if share.Audience != models.AudienceClient {
		t.Errorf("share audience = %s, must inherit %s", share.Audience, models.AudienceClient)
	}
	if len(share.Categories) != 1 || share.Categories[0] != "venture" {
		t.Errorf("share categories = %v, must inherit the original's", share.Categories)
	}
	if share.SharedPostID == nil || *share.SharedPostID != original.ID {
		t.Error("share must reference the original post")
	}

	reloaded, err := f.repo.FindByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("reload original: %v", err)
	}
	if reloaded.ShareCount != 1 {
		t.Errorf("share_count = %d, want 1", reloaded.ShareCount)
	}
	if len(reloaded.ShareIDs) != 1 || reloaded.ShareIDs[0] != share.ID {
		t.Errorf("share_ids = %v, want [%s]", reloaded.ShareIDs, share.ID.Hex())
	}
}

func TestShareMissingOriginal(t *testing.T) {
	f := newPostFixture(t)
	sharer := f.addUser(t, models.AccreditationNone)

	share := &models.Post{UserID: sharer.ID, Visible: true}
	err := f.repo.Share(context.Background(), primitive.NewObjectID(), share, nil)
	if !errors.Is(err, apperr.ErrUnprocessable) {
		t.Errorf("err = %v, want ErrUnprocessable", err)
	}
}

func TestSetVisibleMovesOwnerCount(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)
	post := f.addPost(t, author.ID, models.AudienceEveryone)

	if err := f.repo.SetVisible(context.Background(), post.ID, author.ID, false); err != nil {
		t.Fatalf("set invisible: %v", err)
	}
	if owner := f.getUser(t, author.ID); owner.PostCount != 0 {
		t.Errorf("post_count = %d after hide, want 0", owner.PostCount)
	}

	if err := f.repo.SetVisible(context.Background(), post.ID, author.ID, true); err != nil {
		t.Fatalf("set visible: %v", err)
	}
	if owner := f.getUser(t, author.ID); owner.PostCount != 1 {
		t.Errorf("post_count = %d after unhide, want 1", owner.PostCount)
	}
}

func TestSoftDeletePreservesRecord(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)
	post := f.addPost(t, author.ID, models.AudienceEveryone)

	if err := f.repo.Delete(context.Background(), post.ID, author.ID, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.repo.FindByID(context.Background(), post.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("FindByID after delete = %v, want ErrNotFound", err)
	}
	// The physical record survives the soft delete.
	if n, _ := f.repo.Count(context.Background()); n != 1 {
		t.Errorf("physical count = %d, want 1", n)
	}
	if owner := f.getUser(t, author.ID); owner.PostCount != 0 {
		t.Errorf("post_count = %d after delete, want 0", owner.PostCount)
	}
	// Deleting twice finds nothing: the filter excludes deleted posts.
	if err := f.repo.Delete(context.Background(), post.ID, author.ID, nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteAsCompanyMember(t *testing.T) {
	f := newPostFixture(t)
	member := f.addUser(t, models.AccreditationNone)
	companyID := primitive.NewObjectID()
	company := &models.Company{ID: companyID, Name: "Acme Capital", MemberIDs: []primitive.ObjectID{member.ID}}
	if err := f.companies.InsertOne(context.Background(), company); err != nil {
		t.Fatalf("insert company: %v", err)
	}

	post := &models.Post{UserID: member.ID, Body: "company post", Audience: models.AudienceEveryone, Visible: true}
	if err := f.repo.Create(context.Background(), post, &companyID); err != nil {
		t.Fatalf("create company post: %v", err)
	}
	if !post.IsCompany || post.UserID != companyID {
		t.Fatalf("company post author = %s, is_company = %v", post.UserID.Hex(), post.IsCompany)
	}

	if err := f.repo.Delete(context.Background(), post.ID, member.ID, []primitive.ObjectID{companyID}); err != nil {
		t.Fatalf("delete as member: %v", err)
	}
	if _, err := f.repo.FindByID(context.Background(), post.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("post still live after member delete: %v", err)
	}
}

func TestLikeCounterDrift(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)
	liker := f.addUser(t, models.AccreditationNone)
	post := f.addPost(t, author.ID, models.AudienceEveryone)

	if _, err := f.repo.Like(context.Background(), post.ID, liker.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	updated, err := f.repo.Like(context.Background(), post.ID, liker.ID)
	if err != nil {
		t.Fatalf("second like: %v", err)
	}

	// The id set deduplicates but the counter does not: a repeat like
	// drifts the count. Unlike pulls both back together only partially.
	if len(updated.LikeIDs) != 1 {
		t.Errorf("like_ids = %v, want a single entry", updated.LikeIDs)
	}
	if updated.LikeCount != 2 {
		t.Errorf("like_count = %d, want 2", updated.LikeCount)
	}

	updated, err = f.repo.Unlike(context.Background(), post.ID, liker.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if len(updated.LikeIDs) != 0 || updated.LikeCount != 1 {
		t.Errorf("after unlike: like_ids = %v, like_count = %d", updated.LikeIDs, updated.LikeCount)
	}
}

func TestLogReportDuplicate(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)
	reporter := f.addUser(t, models.AccreditationNone)
	post := f.addPost(t, author.ID, models.AudienceEveryone)

	if err := f.repo.LogReport(context.Background(), post.ID, reporter.ID); err != nil {
		t.Fatalf("report: %v", err)
	}
	if err := f.repo.LogReport(context.Background(), post.ID, reporter.ID); !errors.Is(err, apperr.ErrUnprocessable) {
		t.Errorf("second report = %v, want ErrUnprocessable", err)
	}
	if err := f.repo.LogReport(context.Background(), primitive.NewObjectID(), reporter.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("report on missing post = %v, want ErrNotFound", err)
	}
}

func TestFeatureScopedToOwner(t *testing.T) {
	f := newPostFixture(t)
	author := f.addUser(t, models.AccreditationNone)
	other := f.addUser(t, models.AccreditationNone)
	post := f.addPost(t, author.ID, models.AudienceEveryone)

	if err := f.repo.Feature(context.Background(), post.ID, other.ID, true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("non-owner feature = %v, want ErrNotFound", err)
	}
	if err := f.repo.Feature(context.Background(), post.ID, author.ID, true); err != nil {
		t.Fatalf("feature: %v", err)
	}
	reloaded, _ := f.repo.FindByID(context.Background(), post.ID)
	if !reloaded.Featured {
		t.Error("post should be featured")
	}
}
