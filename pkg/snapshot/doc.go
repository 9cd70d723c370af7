// Package snapshot manages the on-disk layout of collection runs.
//
// Each run owns one timestamped directory under the snapshot root:
//
//	{root}/{run_timestamp}/twitter/
//	    tweet_details/{tweet_id}.json
//	    retweets/{tweet_id}.json
//	    followers/{user_id}.json
//	    followees/{user_id}.json
//	    timelines/{user_id}.json
//
// Run directories are append-only: a run writes its own directory once
// and never touches older ones. Follower and followee files hold
// DeltaRecord values (the change against reconstructed prior state)
// rather than full sets; the Reconciler replays those deltas newest
// first to rebuild the cumulative state at crawl time.
//
// Writes go through a temporary file and rename, so the presence of an
// output file is a reliable completion marker. Task scheduling leans on
// this: a task whose file already exists is never enqueued again.
package snapshot
