// Package ui implements the interactive terminal player using bubbletea's Elm architecture.
//
// The screen is a compact tab strip over one of three pages:
//  1. [SongsTab] : uploaded songs, newest first
//  2. [SunoTab] : generated songs, with a detail page split into [LyricsTab] and [SimilarTab]
//  3. [LikedTab] : the listener's liked songs
//
// Below the page sits the player bar. It is drawn only when the active track resolves to a playable
// URL; otherwise just the tab strip remains. The mobile-style expanded player replaces the page
// while it is open.
//
// Play requests go through the coordinator so bursts of enter presses are debounced and cooled down.
// Store changes arrive as [Msg] values from a [player.Subscription], and track metadata is resolved
// in the background by a [catalog.Cache] whose notifications are fed back into Update.
package ui
