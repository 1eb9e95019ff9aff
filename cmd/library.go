package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/formatter"
	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/shared"
)

// SongsList lists uploaded songs.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	return r.list(ctx, cmd, models.CatalogStandard, "genre", "Uploaded Songs")
}

// SunoList lists generated songs.
func (r *Runner) SunoList(ctx context.Context, cmd *cli.Command) error {
	return r.list(ctx, cmd, models.CatalogGenerated, "tag", "Generated Songs")
}

func (r *Runner) list(ctx context.Context, cmd *cli.Command, c models.Catalog, filter, title string) error {
	if err := r.open(); err != nil {
		return err
	}

	criteria := map[string]any{
		"user_id": cmd.String("user"),
		filter:    cmd.String(filter),
		"search":  cmd.String("search"),
		"limit":   cmd.Int("limit"),
	}

	r.logger.Debug("listing songs", "catalog", c, "criteria", criteria)
	tracks, err := r.library.List(ctx, c, criteria)
	if err != nil {
		return err
	}
	return r.render(cmd.String("format"), cmd.String("output"), title, tracks)
}

// LikedList lists the configured user's liked songs.
func (r *Runner) LikedList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	tracks, err := r.library.Liked(ctx)
	if err != nil {
		return err
	}
	return r.render(cmd.String("format"), "", "Liked Songs", tracks)
}

func (r *Runner) render(format, output, title string, tracks []*catalog.TrackMetadata) error {
	data, err := formatter.Render(format, title, tracks)
	if err != nil {
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		r.logger.Info("wrote songs", "count", len(tracks), "path", output)
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// SongsShow prints one uploaded song.
func (r *Runner) SongsShow(ctx context.Context, cmd *cli.Command) error {
	meta, err := r.show(ctx, cmd, models.CatalogStandard)
	if err != nil || meta == nil {
		return err
	}

	liked, err := r.library.IsLiked(meta.Ref)
	if err != nil {
		return err
	}
	if liked {
		r.writePlain("♥ Liked by %s\n", r.library.UserID)
	}
	return nil
}

// SunoShow prints one generated song and the songs that share its tags.
func (r *Runner) SunoShow(ctx context.Context, cmd *cli.Command) error {
	meta, err := r.show(ctx, cmd, models.CatalogGenerated)
	if err != nil || meta == nil {
		return err
	}

	limit := cmd.Int("similar")
	if limit <= 0 {
		return nil
	}

	similar, err := r.library.Similar(ctx, meta.Ref, limit)
	if err != nil {
		return err
	}
	if len(similar) == 0 {
		return nil
	}

	r.writePlainln("Similar")
	for _, s := range similar {
		r.writePlain("  • %s · %s (%s)\n", s.Title, s.Author, formatter.Plays(s.Count))
	}
	return nil
}

// show resolves and prints one song. A nil result with no error means JSON was written.
func (r *Runner) show(ctx context.Context, cmd *cli.Command, c models.Catalog) (*catalog.TrackMetadata, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return nil, fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return nil, err
	}

	meta, err := r.library.Catalogs().Resolve(ctx, models.TrackRef{Catalog: c, ID: id})
	if err != nil {
		return nil, err
	}
	url, ok := r.urls().Load(meta)

	if cmd.Bool("open") {
		if !ok {
			return nil, fmt.Errorf("%w: %s has no playable URL", shared.ErrInvalidArgument, meta.Ref)
		}
		if err := shared.OpenURL(url); err != nil {
			return nil, err
		}
	}

	if cmd.Bool("json") {
		return nil, r.writeJSON(struct {
			*catalog.TrackMetadata
			URL string `json:"url,omitempty"`
		}{meta, url}, cmd.Bool("pretty"))
	}

	if _, err := r.output.Write(formatter.Detail(meta, url)); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	return meta, nil
}

// LikedAdd likes an uploaded song for the configured user.
func (r *Runner) LikedAdd(ctx context.Context, cmd *cli.Command) error {
	ref, err := r.likeRef(cmd)
	if err != nil {
		return err
	}
	if err := r.library.Like(ref); err != nil {
		return err
	}

	r.logger.Info("liked song", "id", ref.ID, "user", r.library.UserID)
	r.writePlain("✓ Liked %s\n", ref.ID)
	return nil
}

// LikedRemove removes a like for the configured user.
func (r *Runner) LikedRemove(ctx context.Context, cmd *cli.Command) error {
	ref, err := r.likeRef(cmd)
	if err != nil {
		return err
	}
	if err := r.library.Unlike(ref); err != nil {
		return err
	}

	r.logger.Info("unliked song", "id", ref.ID, "user", r.library.UserID)
	r.writePlain("✓ Removed like for %s\n", ref.ID)
	return nil
}

func (r *Runner) likeRef(cmd *cli.Command) (models.TrackRef, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return models.TrackRef{}, fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}
	if r.config.User.ID == "" {
		return models.TrackRef{}, fmt.Errorf("%w: [user] id is not set", shared.ErrMissingConfig)
	}
	if err := r.open(); err != nil {
		return models.TrackRef{}, err
	}
	return models.TrackRef{Catalog: models.CatalogStandard, ID: id}, nil
}

// Genres prints the genre vocabulary, marking the selection after applying each --toggle.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	selected := cmd.StringSlice("selected")
	for _, g := range cmd.StringSlice("toggle") {
		if !models.IsGenre(g) {
			return fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidArgument, g)
		}
		selected = models.ToggleGenre(selected, g)
	}

	r.writePlainHeader("Genres")
	for _, g := range models.Genres {
		mark := " "
		if slices.Contains(selected, g) {
			mark = "✓"
		}
		r.writePlain("[%s] %s\n", mark, g)
	}
	if len(selected) > 0 {
		r.writePlainln("Selected: %s", strings.Join(selected, ", "))
	}
	return nil
}
