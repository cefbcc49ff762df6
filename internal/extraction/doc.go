// Package extraction pulls audio tracks out of uploaded videos.
package extraction
