package kitchen

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	profile *Profile
	loadErr error
	saveErr error
	saves   int
}

func (m *mockRepo) Load(_ context.Context) (Profile, error) {
	if m.loadErr != nil {
		return Profile{}, m.loadErr
	}
	if m.profile == nil {
		return Profile{}, ErrNotFound
	}
	return *m.profile, nil
}

func (m *mockRepo) Save(_ context.Context, p Profile) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.profile = &p
	return nil
}

func TestService_GetPersistsDefault(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	p, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Mama's Thali", p.Name)
	assert.Equal(t, 234, p.ReviewCount)
	require.NotNil(t, repo.profile)
	assert.Equal(t, Default(), *repo.profile)

	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.saves, "default stored once")
}

func TestService_GetStored(t *testing.T) {
	stored := Default()
	stored.Name = "Dadi's Kitchen"
	svc := NewService(&mockRepo{profile: &stored})

	p, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dadi's Kitchen", p.Name)
}

func TestService_GetCorruptFallsBack(t *testing.T) {
	repo := &mockRepo{loadErr: errors.New("invalid character")}
	p, err := NewService(repo).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Default().Name, p.Name)
}

func TestService_Save(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr bool
	}{
		{"valid", func(p *Profile) { p.Rating = 5 }, false},
		{"blank name", func(p *Profile) { p.Name = "  " }, true},
		{"rating too high", func(p *Profile) { p.Rating = 5.1 }, true},
		{"negative reviews", func(p *Profile) { p.ReviewCount = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			p := Default()
			tt.mutate(&p)

			err := NewService(repo).Save(context.Background(), p)
			if tt.wantErr {
				require.Error(t, err)
				assert.Zero(t, repo.saves)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, p, *repo.profile)
		})
	}
}

func TestService_SaveError(t *testing.T) {
	err := NewService(&mockRepo{saveErr: errors.New("read-only")}).Save(context.Background(), Default())
	require.Error(t, err)
}
