package pagescript

// pageScriptSource is the template for the injected script. It is written
// in ES5 so the oldest webviews still parse it, and it never throws out of
// its own entry points: site markup is untrusted input.
const pageScriptSource = `
(function() {
  'use strict';

  var Y = window.YomuReader = window.YomuReader || {};
  if (Y.profile === {{.ProfileID | printf "%q"}} && Y.state === 'active') {
    // Already initialized for this profile on this page.
    return;
  }

  Y.profile = {{.ProfileID | printf "%q"}};
  Y.state = Y.state || 'uninitialized';

  var HIDE_SELECTORS = {{.HideSelectors}};
  var IMAGE_SELECTOR = {{.ImageSelector}};
  var READING_AREAS = {{.ReadingAreas}};
  var AD_FRAGMENTS = {{.AdFragments}};
  var IS_GENERIC = {{.Generic}};

  Y.log = function(message) {
    try { console.log('[YomuReader]', message); } catch (e) {}
  };

  Y.send = function(data) {
    try {
      if (window.YomuHost && window.YomuHost.postMessage) {
        window.YomuHost.postMessage(JSON.stringify(data));
      }
    } catch (e) {
      Y.log('send failed: ' + e.message);
    }
  };

  Y.isChapterPage = function() {
    var url = window.location.href.toLowerCase();
    var hints = ['chapter', 'ch-', '/ch/', 'baca', 'read'];
    for (var i = 0; i < hints.length; i++) {
      if (url.indexOf(hints[i]) !== -1) { return true; }
    }
    return false;
  };

  Y.isDetailPage = function() {
    if (Y.isChapterPage()) { return false; }
    var url = window.location.href.toLowerCase();
    var hints = ['manga', 'komik', 'series'];
    for (var i = 0; i < hints.length; i++) {
      if (url.indexOf(hints[i]) !== -1) { return true; }
    }
    return false;
  };

  function queryAll(selector) {
    try {
      return Array.prototype.slice.call(document.querySelectorAll(selector));
    } catch (e) {
      return [];
    }
  }

  function firstText(selector) {
    try {
      var el = document.querySelector(selector);
      return el && el.textContent ? el.textContent.trim() : '';
    } catch (e) {
      return '';
    }
  }

  function firstSrc(selector) {
    try {
      var el = document.querySelector(selector);
      return el && el.src ? el.src : '';
    } catch (e) {
      return '';
    }
  }

  // --- Declutter ---------------------------------------------------------

  function insideReadingArea(el) {
    for (var i = 0; i < READING_AREAS.length; i++) {
      try {
        if (el.closest(READING_AREAS[i])) { return true; }
      } catch (e) {}
    }
    return false;
  }

  function declutter() {
    for (var i = 0; i < HIDE_SELECTORS.length; i++) {
      var matched = queryAll(HIDE_SELECTORS[i]);
      for (var j = 0; j < matched.length; j++) {
        var el = matched[j];
        if (IS_GENERIC) {
          // Unknown layout: never remove anything that holds an image or
          // sits inside the reading area.
          if (el.querySelector('img') || insideReadingArea(el)) { continue; }
          el.style.display = 'none';
        } else {
          try { el.remove(); } catch (e) { el.style.display = 'none'; }
        }
      }
    }
  }

  // --- Image layout ------------------------------------------------------

  function normalizeImages() {
    var images = queryAll(IMAGE_SELECTOR);
    for (var i = 0; i < images.length; i++) {
      var img = images[i];
      img.style.cssText = 'width:100% !important;height:auto !important;' +
        'display:block !important;margin:0 auto 2px auto !important;' +
        'max-width:100% !important;border:none !important;box-shadow:none !important;';
      if (i > 2) {
        img.loading = 'lazy';
      }
    }
    return images;
  }

  function chapterImages() {
    var urls = [];
    var seen = {};
    var images = queryAll(IMAGE_SELECTOR);
    for (var i = 0; i < images.length; i++) {
      var img = images[i];
      if (img.src && img.naturalWidth > 200 && img.naturalHeight > 200 && !seen[img.src]) {
        seen[img.src] = true;
        urls.push(img.src);
      }
    }
    return urls;
  }

  // --- Metadata extraction -----------------------------------------------

  function extractSeriesInfo() {
    try {
      var title = firstText({{.MetaTitle}});
      if (!title) { return null; }
      var genres = [];
      var genreEls = queryAll({{.MetaGenre}});
      for (var i = 0; i < genreEls.length; i++) {
        var g = genreEls[i].textContent ? genreEls[i].textContent.trim() : '';
        if (g) { genres.push(g); }
      }
      return {
        title: title,
        url: window.location.href,
        thumbnail: firstSrc({{.MetaThumbnail}}),
        description: firstText({{.MetaDesc}}),
        genre: genres.join(', '),
        status: firstText({{.MetaStatus}}),
        site: window.location.hostname
      };
    } catch (e) {
      Y.log('metadata extraction failed: ' + e.message);
      return null;
    }
  }

  // --- Floating controls -------------------------------------------------

  function makeButton(label, color, onClick) {
    var btn = document.createElement('button');
    btn.textContent = label;
    btn.style.cssText = 'width:50px;height:50px;border-radius:25px;background:' + color +
      ';color:white;border:none;font-size:18px;box-shadow:0 2px 10px rgba(0,0,0,0.3);cursor:pointer;';
    btn.addEventListener('click', onClick);
    return btn;
  }

  function attachControls() {
    if (document.getElementById('yomu-fab')) { return; }

    var fab = document.createElement('div');
    fab.id = 'yomu-fab';
    fab.style.cssText = 'position:fixed;bottom:20px;right:20px;z-index:9999;' +
      'display:flex;flex-direction:column;gap:10px;';

    if (Y.isChapterPage()) {
      fab.appendChild(makeButton('DL', '#34C759', function() {
        var images = chapterImages();
        if (images.length === 0) {
          Y.log('no images found to download');
          return;
        }
        var info = Y.currentManga || {};
        Y.send({
          type: 'DOWNLOAD_CHAPTER',
          mangaTitle: info.title || document.title,
          mangaUrl: info.url || window.location.href,
          chapterTitle: document.title,
          chapterUrl: window.location.href,
          images: images
        });
      }));
      fab.appendChild(makeButton('AS', '#8E44AD', toggleAutoScroll));
    }

    fab.appendChild(makeButton('BM', '#007AFF', function() {
      var info = Y.currentManga || extractSeriesInfo();
      if (info) {
        info.type = 'BOOKMARK_ADD';
        Y.send(info);
      } else {
        Y.send({
          type: 'BOOKMARK_ADD',
          title: document.title,
          url: window.location.href,
          site: window.location.hostname
        });
      }
    }));
    fab.appendChild(makeButton('RM', '#FF9500', toggleReadingMode));

    document.body.appendChild(fab);
  }

  function toggleReadingMode() {
    var body = document.body;
    if (body.classList.contains('yomu-reading-mode')) {
      body.classList.remove('yomu-reading-mode');
      var hidden = queryAll('.yomu-hidden');
      for (var i = 0; i < hidden.length; i++) {
        hidden[i].style.display = '';
        hidden[i].classList.remove('yomu-hidden');
      }
    } else {
      body.classList.add('yomu-reading-mode');
      body.style.backgroundColor = '#000';
      var all = queryAll('body *');
      for (var j = 0; j < all.length; j++) {
        var el = all[j];
        if (el.id === 'yomu-fab') { continue; }
        if (el.querySelector && el.querySelector('img')) { continue; }
        if (insideReadingArea(el)) { continue; }
        if (el.offsetHeight > 0) {
          el.style.display = 'none';
          el.classList.add('yomu-hidden');
        }
      }
    }
  }

  function toggleAutoScroll() {
    if (Y.autoScrollTimer) {
      clearInterval(Y.autoScrollTimer);
      Y.autoScrollTimer = null;
      return;
    }
    Y.autoScrollTimer = setInterval(function() {
      window.scrollBy(0, 2);
      if (window.innerHeight + window.scrollY >= document.body.offsetHeight) {
        clearInterval(Y.autoScrollTimer);
        Y.autoScrollTimer = null;
      }
    }, 50);
  }

  // --- Progress tracking -------------------------------------------------

  function reportProgress() {
    var scrollY = window.pageYOffset;
    var docHeight = document.documentElement.scrollHeight;
    var winHeight = window.innerHeight;
    var pct = 0;
    if (docHeight > winHeight) {
      pct = (scrollY / (docHeight - winHeight)) * 100;
    }
    pct = Math.max(0, Math.min(100, Math.round(pct)));

    var images = queryAll(IMAGE_SELECTOR);
    var currentPage = 1;
    for (var i = 0; i < images.length; i++) {
      if (scrollY >= images[i].offsetTop - winHeight / 2) {
        currentPage = i + 1;
      }
    }

    var info = Y.currentManga || {};
    Y.send({
      type: 'CHAPTER_PROGRESS',
      mangaUrl: info.url || window.location.href,
      chapterUrl: window.location.href,
      chapterTitle: document.title,
      currentPage: currentPage,
      totalPages: images.length,
      scrollPosition: scrollY,
      scrollPercentage: pct,
      readingTime: Date.now() - Y.startedAt,
      timestamp: Date.now()
    });
  }

  function attachProgressTracking() {
    if (Y.progressAttached) { return; }
    Y.progressAttached = true;

    var debounce = null;
    window.addEventListener('scroll', function() {
      if (debounce) { clearTimeout(debounce); }
      debounce = setTimeout(reportProgress, 1000);
    });

    window.addEventListener('beforeunload', function() {
      Y.send({
        type: 'CHAPTER_COMPLETE',
        chapterUrl: window.location.href,
        totalReadingTime: Date.now() - Y.startedAt
      });
    });
  }

  // --- Keyboard shortcuts ------------------------------------------------

  function attachKeyboardShortcuts() {
    if (Y.keysAttached) { return; }
    Y.keysAttached = true;
    document.addEventListener('keydown', function(e) {
      if (e.ctrlKey || e.metaKey) { return; }
      if (e.key === 'r' || e.key === 'R') {
        toggleReadingMode();
        e.preventDefault();
      } else if (e.key === 'ArrowLeft') {
        var prev = document.querySelector('a[href*="prev"], .prev-chapter, .chapter-prev');
        if (prev) { prev.click(); }
      } else if (e.key === 'ArrowRight') {
        var next = document.querySelector('a[href*="next"], .next-chapter, .chapter-next');
        if (next) { next.click(); }
      }
    });
  }

  // --- Request-level ad blocking -----------------------------------------

  function isAdURL(url) {
    if (typeof url !== 'string') { return false; }
    for (var i = 0; i < AD_FRAGMENTS.length; i++) {
      if (url.indexOf(AD_FRAGMENTS[i]) !== -1) { return true; }
    }
    return false;
  }

  function attachRequestBlocking() {
    if (Y.netBlockAttached) { return; }
    Y.netBlockAttached = true;
    try {
      var originalFetch = window.fetch;
      if (originalFetch) {
        window.fetch = function() {
          var url = arguments[0];
          if (url && url.url) { url = url.url; }
          if (isAdURL(url)) {
            return Promise.reject(new Error('blocked ad request'));
          }
          return originalFetch.apply(this, arguments);
        };
      }
      var originalOpen = window.XMLHttpRequest.prototype.open;
      window.XMLHttpRequest.prototype.open = function(method, url) {
        if (isAdURL(url)) {
          // Leave the request un-opened; send() will then throw inside the
          // ad script, not inside ours.
          return;
        }
        return originalOpen.apply(this, arguments);
      };
    } catch (e) {
      // Fail open: an exotic environment keeps its native fetch.
      Y.log('request blocking unavailable: ' + e.message);
    }
  }

  // --- Lifecycle ---------------------------------------------------------

  function initialize() {
    if (Y.state === 'active') { return; }
    Y.state = 'active';
    Y.startedAt = Date.now();

    Y.log('initializing reader for profile ' + Y.profile);

    declutter();
    normalizeImages();

    Y.currentManga = extractSeriesInfo();

    Y.send({
      type: 'PAGE_INFO',
      title: document.title,
      url: window.location.href,
      domain: window.location.hostname,
      chapterTitle: Y.isChapterPage() ? document.title : '',
      chapterUrl: Y.isChapterPage() ? window.location.href : ''
    });

    attachControls();
    attachProgressTracking();
    attachKeyboardShortcuts();
    attachRequestBlocking();

    // Ads injected after initial render get swept periodically.
    if (!Y.sweepTimer) {
      Y.sweepTimer = setInterval(function() {
        declutter();
        normalizeImages();
      }, 3000);
    }
  }

  // Client-side navigation resets the lifecycle so the next init re-runs
  // extraction against the new document state.
  if (!Y.navObserver) {
    Y.lastURL = window.location.href;
    Y.navObserver = new MutationObserver(function() {
      if (window.location.href !== Y.lastURL) {
        Y.lastURL = window.location.href;
        Y.state = 'uninitialized';
        Y.currentManga = null;
        setTimeout(initialize, 1000);
      }
    });
    Y.navObserver.observe(document, { subtree: true, childList: true });
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', initialize);
  } else {
    initialize();
  }
})();
`
